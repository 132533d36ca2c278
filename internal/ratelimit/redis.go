package ratelimit

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// fixedWindow increments the counter and starts the expiry on the first hit
// only, so the window is anchored at the first action like Memory.
var fixedWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// Redis shares windows between processes. Same Decision semantics as Memory.
type Redis struct {
	client redis.Scripter
	prefix string
	limits Limits
	window time.Duration
	now    func() time.Time
}

func NewRedis(client redis.Scripter, prefix string, limits Limits, win time.Duration) *Redis {
	if win <= 0 {
		win = DefaultWindow
	}
	return &Redis{
		client: client,
		prefix: prefix,
		limits: limits,
		window: win,
		now:    time.Now,
	}
}

func (r *Redis) key(identifier string, action Action) string {
	return r.prefix + ":" + string(action) + ":" + identifier
}

func (r *Redis) Allow(ctx context.Context, identifier string, action Action) (Decision, error) {
	limit := r.limits.of(action)
	res, err := fixedWindow.Run(ctx, r.client, []string{r.key(identifier, action)}, r.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, errors.Wrap(err, "rate limit script")
	}
	if len(res) != 2 {
		return Decision{}, errors.Errorf("rate limit script returned %d values", len(res))
	}
	count := int(res[0])
	return Decision{
		Allowed:   count <= limit,
		Count:     count,
		Limit:     limit,
		ResetTime: r.now().Add(time.Duration(res[1]) * time.Millisecond),
	}, nil
}
