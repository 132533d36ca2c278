package store

import (
	"context"
	"time"

	"murphy/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteTx is the unit of work the vote ledger runs in. Either every write in
// it commits or none does.
type VoteTx interface {
	// LockLaw loads the law and, where the database supports it, holds a row
	// lock until commit.
	LockLaw(lawID int64) (*models.Law, error)
	// FindVote returns nil without error when the pair has no vote.
	FindVote(lawID int64, voter string) (*models.Vote, error)
	SaveVote(v *models.Vote) error
	DeleteVote(lawID int64, voter string) error
	// AdjustCounters applies the deltas, stamps last_voted_at and returns the updated law.
	AdjustCounters(lawID int64, upDelta, downDelta int64, at time.Time) (*models.Law, error)
}

type voteTx struct {
	tx *gorm.DB
}

// InVoteTx runs fn inside a database transaction.
func (s *Store) InVoteTx(ctx context.Context, fn func(VoteTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&voteTx{tx: tx})
	})
}

func (v *voteTx) LockLaw(lawID int64) (*models.Law, error) {
	q := v.tx
	// SQLite has no FOR UPDATE; its single writer serialises instead
	if q.Dialector.Name() != DriverSQLite {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var law models.Law
	if err := q.First(&law, lawID).Error; err != nil {
		return nil, notFound(errors.Wrap(err, "lock law"))
	}
	return &law, nil
}

func (v *voteTx) FindVote(lawID int64, voter string) (*models.Vote, error) {
	var vote models.Vote
	err := v.tx.Where("law_id = ? AND voter = ?", lawID, voter).Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find vote")
	}
	return &vote, nil
}

func (v *voteTx) SaveVote(vote *models.Vote) error {
	return errors.Wrap(v.tx.Save(vote).Error, "save vote")
}

func (v *voteTx) DeleteVote(lawID int64, voter string) error {
	err := v.tx.Where("law_id = ? AND voter = ?", lawID, voter).Delete(&models.Vote{}).Error
	return errors.Wrap(err, "delete vote")
}

func (v *voteTx) AdjustCounters(lawID int64, upDelta, downDelta int64, at time.Time) (*models.Law, error) {
	res := v.tx.Model(&models.Law{}).
		Where("id = ?", lawID).
		UpdateColumns(map[string]any{
			"upvotes":       gorm.Expr("upvotes + ?", upDelta),
			"downvotes":     gorm.Expr("downvotes + ?", downDelta),
			"last_voted_at": at,
		})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "adjust counters")
	}
	var law models.Law
	if err := v.tx.First(&law, lawID).Error; err != nil {
		return nil, notFound(errors.Wrap(err, "reload law"))
	}
	if law.Upvotes < 0 || law.Downvotes < 0 {
		return nil, errors.Errorf("law %d counters went negative (%d/%d)", lawID, law.Upvotes, law.Downvotes)
	}
	return &law, nil
}
