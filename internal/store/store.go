// Package store is the gorm persistence layer for laws, votes and categories.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"murphy/internal/models"
	"murphy/internal/ranking"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("record not found")

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Store struct {
	db *gorm.DB
}

// Open connects with the named driver. SQLite is limited to one connection so
// write transactions queue instead of failing with SQLITE_BUSY.
func Open(driver, dsn string, debug bool) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", driver)
	}

	logger := gormlogger.Discard
	if debug {
		logger = gormlogger.Default.LogMode(gormlogger.Info)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger,
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if dialector.Name() == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "open database")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return &Store{db: db}, nil
}

// New wraps an existing connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "ping database")
}

// Migrate creates the tables and seeds the default categories into an empty table.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	for _, model := range models.MigrateModels {
		if err := db.AutoMigrate(model); err != nil {
			return errors.Wrapf(err, "migrate %T", model)
		}
	}
	var n int64
	if err := db.Model(&models.Category{}).Count(&n).Error; err != nil {
		return errors.Wrap(err, "count categories")
	}
	if n > 0 {
		return nil
	}
	seed := make([]models.Category, len(models.DefaultCategories))
	copy(seed, models.DefaultCategories)
	return errors.Wrap(db.Create(&seed).Error, "seed categories")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ListQuery selects published laws.
type ListQuery struct {
	Order      ranking.Order
	Limit      int
	Offset     int
	Search     string
	CategoryID int64
}

func (s *Store) ListLaws(ctx context.Context, q ListQuery) ([]models.Law, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.Law{}).Where("laws.status = ?", models.LawStatusPublished)
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		base = base.Where("(LOWER(laws.text) LIKE ? OR LOWER(COALESCE(laws.title, '')) LIKE ?)", like, like)
	}
	if q.CategoryID > 0 {
		base = base.Where("laws.id IN (?)",
			s.db.Table("law_categories").Select("law_id").Where("category_id = ?", q.CategoryID))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count laws")
	}

	var laws []models.Law
	err := base.Session(&gorm.Session{}).
		Preload("Categories").
		Clauses(q.Order.Clause()).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&laws).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list laws")
	}
	return laws, total, nil
}

// GetLaw returns a law in any status.
func (s *Store) GetLaw(ctx context.Context, id int64) (*models.Law, error) {
	var law models.Law
	if err := s.db.WithContext(ctx).Preload("Categories").First(&law, id).Error; err != nil {
		return nil, notFound(errors.Wrap(err, "get law"))
	}
	return &law, nil
}

// GetPublishedLaw hides laws that are still in review or were rejected.
func (s *Store) GetPublishedLaw(ctx context.Context, id int64) (*models.Law, error) {
	law, err := s.GetLaw(ctx, id)
	if err != nil {
		return nil, err
	}
	if law.Status != models.LawStatusPublished {
		return nil, ErrNotFound
	}
	return law, nil
}

func (s *Store) ListReviewQueue(ctx context.Context, limit int) ([]models.Law, error) {
	var laws []models.Law
	err := s.db.WithContext(ctx).
		Preload("Categories").
		Where("status = ?", models.LawStatusInReview).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&laws).Error
	return laws, errors.Wrap(err, "list review queue")
}

// InsertSubmission stores a new law in review, associated with categoryID when non-zero.
func (s *Store) InsertSubmission(ctx context.Context, law *models.Law, categoryID int64) error {
	law.Status = models.LawStatusInReview
	law.Upvotes, law.Downvotes = 0, 0
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if categoryID > 0 {
			var cat models.Category
			if err := tx.First(&cat, categoryID).Error; err != nil {
				return notFound(errors.Wrap(err, "find category"))
			}
			law.Categories = []models.Category{cat}
		}
		return errors.Wrap(tx.Omit("Categories.*").Create(law).Error, "insert law")
	})
}

// SetStatus moves a law through moderation.
func (s *Store) SetStatus(ctx context.Context, id int64, status models.LawStatus) (*models.Law, error) {
	res := s.db.WithContext(ctx).Model(&models.Law{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update status")
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetLaw(ctx, id)
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := s.db.WithContext(ctx).Order("title ASC").Find(&cats).Error
	return cats, errors.Wrap(err, "list categories")
}

// CountVotes tallies the vote rows of a law. The law counters must always match it.
func (s *Store) CountVotes(ctx context.Context, lawID int64) (up, down int64, err error) {
	type row struct {
		VoteType models.VoteType
		N        int64
	}
	var rows []row
	err = s.db.WithContext(ctx).Model(&models.Vote{}).
		Select("vote_type, COUNT(*) AS n").
		Where("law_id = ?", lawID).
		Group("vote_type").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, errors.Wrap(err, "count votes")
	}
	for _, r := range rows {
		switch r.VoteType {
		case models.VoteTypeUp:
			up = r.N
		case models.VoteTypeDown:
			down = r.N
		}
	}
	return up, down, nil
}

