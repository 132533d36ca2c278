package ranking

import (
	"slices"
	"testing"
	"time"

	"murphy/internal/models"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func ids(laws []*models.Law) []int64 {
	out := make([]int64, 0, len(laws))
	for _, l := range laws {
		out = append(out, l.Id)
	}
	return out
}

func sorted(o Order, laws []*models.Law) []int64 {
	cp := slices.Clone(laws)
	slices.SortFunc(cp, o.Compare)
	return ids(cp)
}

func TestParseOrder(t *testing.T) {
	o, ok := ParseOrder("", "")
	assert.True(t, ok)
	assert.Equal(t, DefaultOrder(), o)

	o, ok = ParseOrder("Trending", "ASC")
	assert.True(t, ok)
	assert.Equal(t, Order{Key: KeyTrending, Direction: Asc}, o)

	_, ok = ParseOrder("hot", "")
	assert.False(t, ok)
	_, ok = ParseOrder("score", "up")
	assert.False(t, ok)
}

func TestScoreOrder(t *testing.T) {
	laws := []*models.Law{
		{Id: 1, Upvotes: 3, Downvotes: 1},
		{Id: 2, Upvotes: 10, Downvotes: 2},
		{Id: 3, Upvotes: 0, Downvotes: 4},
	}
	assert.Equal(t, []int64{2, 1, 3}, sorted(DefaultOrder(), laws))
	assert.Equal(t, []int64{3, 1, 2}, sorted(Order{Key: KeyScore, Direction: Asc}, laws))
}

func TestTrendingPrefersRecentVotes(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	laws := []*models.Law{
		{Id: 1, Upvotes: 50, LastVotedAt: ptr(now.Add(-48 * time.Hour))},
		{Id: 2, Upvotes: 1, LastVotedAt: ptr(now)},
		{Id: 3, Upvotes: 99},
		{Id: 4, Upvotes: 5, LastVotedAt: ptr(now)},
	}
	o := Order{Key: KeyTrending, Direction: Desc}
	assert.Equal(t, []int64{4, 2, 1, 3}, sorted(o, laws))

	// never-voted laws stay last when ascending too
	o.Direction = Asc
	assert.Equal(t, []int64{1, 2, 4, 3}, sorted(o, laws))
}

func TestRecentOrder(t *testing.T) {
	now := time.Now()
	laws := []*models.Law{
		{Id: 1, CreatedAt: now.Add(-time.Hour)},
		{Id: 2, CreatedAt: now},
	}
	assert.Equal(t, []int64{2, 1}, sorted(Order{Key: KeyRecent, Direction: Desc}, laws))
}

func TestClauseColumns(t *testing.T) {
	c := Order{Key: KeyTrending, Direction: Desc}.Clause()
	assert.Len(t, c.Columns, 4)
	assert.True(t, c.Columns[1].Desc)
	assert.False(t, c.Columns[0].Desc)

	c = DefaultOrder().Clause()
	assert.Len(t, c.Columns, 2)
	assert.True(t, c.Columns[0].Column.Raw)
}
