package handlers

import (
	"context"

	"murphy/internal/ledger"
	"murphy/internal/metrics"
	"murphy/internal/models"
	"murphy/internal/ratelimit"
	"murphy/internal/store"
	"murphy/pkg/third/geetest"
)

// LawStore is the persistence the handlers read and write through.
type LawStore interface {
	ListLaws(ctx context.Context, q store.ListQuery) ([]models.Law, int64, error)
	GetPublishedLaw(ctx context.Context, id int64) (*models.Law, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	InsertSubmission(ctx context.Context, law *models.Law, categoryID int64) error
	ListReviewQueue(ctx context.Context, limit int) ([]models.Law, error)
	SetStatus(ctx context.Context, id int64, status models.LawStatus) (*models.Law, error)
	Ping(ctx context.Context) error
}

type VoteLedger interface {
	ApplyVote(ctx context.Context, lawID int64, voter string, voteType string) (ledger.Outcome, error)
	RemoveVote(ctx context.Context, lawID int64, voter string) (ledger.Outcome, error)
}

type CaptchaVerifier interface {
	Validate(ctx context.Context, ch *geetest.Challenge, userIP string) bool
}

// Deps is everything the v1 routes need. Metrics and Captcha may be nil.
type Deps struct {
	Store     LawStore
	Ledger    VoteLedger
	Limiter   ratelimit.Limiter
	Metrics   *metrics.Metrics
	Captcha   CaptchaVerifier
	SystemKey string
}
