package ratelimit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisFixedWindow(t *testing.T) {
	addr := os.Getenv("MURPHY_TEST_REDIS")
	if addr == "" {
		t.Skip("MURPHY_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	prefix := fmt.Sprintf("murphy-test-%d", time.Now().UnixNano())
	r := NewRedis(client, prefix, Limits{ActionVote: 3}, 2*time.Second)

	for i := 1; i <= 3; i++ {
		d, err := r.Allow(ctx, "a", ActionVote)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, i, d.Count)
	}
	d, err := r.Allow(ctx, "a", ActionVote)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), d.ResetTime, 2*time.Second)

	time.Sleep(2100 * time.Millisecond)
	d, err = r.Allow(ctx, "a", ActionVote)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}
