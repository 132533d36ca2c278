package handlers

import (
	"strconv"
	"strings"

	"murphy/internal/apperr"
	"murphy/internal/identity"
	"murphy/internal/metrics"
	"murphy/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/constraints"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// lawID reads the :id route parameter.
func lawID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidArgument("Invalid law ID")
	}
	return id, nil
}

// queryInt parses an optional integer query parameter within [lo, hi].
func queryInt[T constraints.Integer](c *fiber.Ctx, name string, def, lo, hi T) (T, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < int64(lo) || v > int64(hi) {
		return 0, apperr.InvalidArgument("Invalid " + name)
	}
	return T(v), nil
}

// limit counts the action against the caller and rejects it once the window is full.
// A limiter backend failure lets the request through.
func limit(c *fiber.Ctx, l ratelimit.Limiter, m *metrics.Metrics, action ratelimit.Action) (string, error) {
	voter := identity.FromCtx(c)
	d, err := l.Allow(c.UserContext(), voter, action)
	if err != nil {
		log.Warn().Err(err).Str("action", string(action)).Msg("rate limiter unavailable")
		return voter, nil
	}
	c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining()))
	if !d.Allowed {
		m.RateLimited(string(action))
		log.Debug().Str("voter", voter).Str("action", string(action)).Int("count", d.Count).Msg("rate limited")
		return voter, apperr.RateLimited(d.ResetTime)
	}
	return voter, nil
}
