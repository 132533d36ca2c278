package apperr

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := errors.Wrap(NotFound("Law not found"), "vote")
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindInvalidArgument))

	e, ok := From(err)
	require.True(t, ok)
	assert.Equal(t, "Law not found", e.Message)
}

func TestPersistenceKeepsCause(t *testing.T) {
	root := errors.New("connection refused")
	err := Persistence(root, "Failed to record vote")

	assert.True(t, Is(err, KindPersistence))
	assert.Equal(t, root, errors.Cause(err))
	assert.Contains(t, err.Error(), "connection refused")

	e, _ := From(err)
	assert.Equal(t, "Failed to record vote", e.Message)
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 60, RetryAfter(now.Add(60*time.Second), now))
	assert.Equal(t, 2, RetryAfter(now.Add(1500*time.Millisecond), now))
	assert.Equal(t, 1, RetryAfter(now, now))
	assert.Equal(t, 1, RetryAfter(now.Add(-time.Minute), now))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "rate_limited", KindRateLimited.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
