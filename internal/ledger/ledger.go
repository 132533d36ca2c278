// Package ledger is the authority on who voted what. Every request is resolved
// against the stored vote for the (law, voter) pair, never against what the
// client believes it holds, and the vote row and the law counters change in
// the same transaction.
package ledger

import (
	"context"
	"hash/maphash"
	"sync"
	"time"

	"murphy/internal/apperr"
	"murphy/internal/models"
	"murphy/internal/store"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// TxRunner is the slice of the store the ledger needs.
type TxRunner interface {
	InVoteTx(ctx context.Context, fn func(store.VoteTx) error) error
}

// Outcome is the state after one ledger operation.
type Outcome struct {
	LawID      int64
	Previous   State
	State      State
	Transition Transition
	Upvotes    int64
	Downvotes  int64
}

const lockStripes = 64

type Ledger struct {
	store TxRunner
	// per-law stripes serialise read-modify-write inside this process; the
	// row lock in the transaction covers other processes
	stripes [lockStripes]sync.Mutex
	seed    maphash.Seed
	now     func() time.Time
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(s TxRunner, opts ...Option) *Ledger {
	l := &Ledger{
		store: s,
		seed:  maphash.MakeSeed(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) lock(lawID int64) func() {
	var h maphash.Hash
	h.SetSeed(l.seed)
	var b [8]byte
	for i := range b {
		b[i] = byte(lawID >> (8 * i))
	}
	_, _ = h.Write(b[:])
	mu := &l.stripes[h.Sum64()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// ApplyVote casts, switches or toggles off the voter's vote. voteType must be
// "up" or "down"; it is checked before anything is read.
func (l *Ledger) ApplyVote(ctx context.Context, lawID int64, voter string, voteType string) (Outcome, error) {
	t, ok := models.ParseVoteType(voteType)
	if !ok {
		return Outcome{}, apperr.InvalidArgument("Invalid vote type. Must be 'up' or 'down'")
	}
	req := requested(t)
	return l.run(ctx, lawID, voter, func(cur State) (State, Transition, delta) {
		return apply(cur, req)
	})
}

// RemoveVote clears the voter's vote. Removing a vote that does not exist succeeds.
func (l *Ledger) RemoveVote(ctx context.Context, lawID int64, voter string) (Outcome, error) {
	return l.run(ctx, lawID, voter, remove)
}

func (l *Ledger) run(ctx context.Context, lawID int64, voter string, step func(State) (State, Transition, delta)) (Outcome, error) {
	unlock := l.lock(lawID)
	defer unlock()

	var out Outcome
	err := l.store.InVoteTx(ctx, func(tx store.VoteTx) error {
		law, err := tx.LockLaw(lawID)
		if err != nil {
			return err
		}
		if law.Status != models.LawStatusPublished {
			return store.ErrNotFound
		}
		existing, err := tx.FindVote(lawID, voter)
		if err != nil {
			return err
		}

		cur := stateOf(existing)
		next, tr, d := step(cur)
		out = Outcome{
			LawID:      lawID,
			Previous:   cur,
			State:      next,
			Transition: tr,
			Upvotes:    law.Upvotes,
			Downvotes:  law.Downvotes,
		}
		if tr == TransitionNoop {
			return nil
		}

		switch {
		case next == NoVote:
			err = tx.DeleteVote(lawID, voter)
		case existing != nil:
			existing.VoteType = next.VoteType()
			err = tx.SaveVote(existing)
		default:
			err = tx.SaveVote(&models.Vote{LawId: lawID, Voter: voter, VoteType: next.VoteType()})
		}
		if err != nil {
			return err
		}

		updated, err := tx.AdjustCounters(lawID, d.up, d.down, l.now())
		if err != nil {
			return err
		}
		out.Upvotes, out.Downvotes = updated.Upvotes, updated.Downvotes
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Outcome{}, apperr.NotFound("Law not found")
		}
		log.Error().Stack().Err(err).Int64("law_id", lawID).Msg("vote transaction failed")
		return Outcome{}, apperr.Persistence(err, "Failed to record vote")
	}
	return out, nil
}
