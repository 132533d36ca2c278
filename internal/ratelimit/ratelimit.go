// Package ratelimit implements the per-identifier fixed-window counter that
// guards voting and submissions.
//
// A window starts at the first action of an identifier and lasts Window. The
// counter resets hard when the window expires, so a burst straddling the
// boundary can be admitted up to twice the limit.
package ratelimit

import (
	"context"
	"time"
)

type Action string

const (
	ActionVote   Action = "vote"
	ActionSubmit Action = "submit"
)

const (
	DefaultWindow      = 60 * time.Second
	DefaultVoteLimit   = 30
	DefaultSubmitLimit = 5
)

// Decision is the result of one check. ResetTime is the end of the window
// the action was counted in.
type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	ResetTime time.Time
}

// Remaining is how many more actions the window admits.
func (d Decision) Remaining() int {
	if d.Count >= d.Limit {
		return 0
	}
	return d.Limit - d.Count
}

// Limiter counts one action for identifier and reports whether it is admitted.
type Limiter interface {
	Allow(ctx context.Context, identifier string, action Action) (Decision, error)
}

// Limits maps each action kind to its maximum count per window.
type Limits map[Action]int

func DefaultLimits() Limits {
	return Limits{
		ActionVote:   DefaultVoteLimit,
		ActionSubmit: DefaultSubmitLimit,
	}
}

func (l Limits) of(action Action) int {
	if n, ok := l[action]; ok {
		return n
	}
	return DefaultVoteLimit
}
