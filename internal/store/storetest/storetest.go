// Package storetest opens throwaway in-memory stores for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"murphy/internal/models"
	"murphy/internal/store"

	"github.com/stretchr/testify/require"
)

var seq atomic.Int64

// New returns a migrated in-memory SQLite store private to the test.
func New(t testing.TB) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	s, err := store.Open(store.DriverSQLite, dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// PublishedLaw inserts a published law with the given counters.
func PublishedLaw(t testing.TB, s *store.Store, text string, up, down int64) *models.Law {
	t.Helper()
	law := &models.Law{
		Text:      text,
		Status:    models.LawStatusPublished,
		Upvotes:   up,
		Downvotes: down,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.DB().Create(law).Error)
	return law
}
