package ledger

import "murphy/internal/models"

// State is a voter's current stance on one law.
type State uint8

const (
	NoVote State = iota
	Up
	Down
)

func (s State) String() string {
	switch s {
	case Up:
		return string(models.VoteTypeUp)
	case Down:
		return string(models.VoteTypeDown)
	default:
		return "none"
	}
}

// VoteType is the wire value, empty for NoVote.
func (s State) VoteType() models.VoteType {
	switch s {
	case Up:
		return models.VoteTypeUp
	case Down:
		return models.VoteTypeDown
	default:
		return ""
	}
}

func stateOf(v *models.Vote) State {
	if v == nil {
		return NoVote
	}
	switch v.VoteType {
	case models.VoteTypeUp:
		return Up
	case models.VoteTypeDown:
		return Down
	default:
		return NoVote
	}
}

func requested(t models.VoteType) State {
	if t == models.VoteTypeUp {
		return Up
	}
	return Down
}

// Transition names an edge of the state machine, for metrics.
type Transition string

const (
	TransitionCast      Transition = "cast"
	TransitionToggleOff Transition = "toggle_off"
	TransitionSwitch    Transition = "switch"
	TransitionRemove    Transition = "remove"
	TransitionNoop      Transition = "noop"
)

type delta struct {
	up, down int64
}

func counterOf(s State) delta {
	switch s {
	case Up:
		return delta{up: 1}
	case Down:
		return delta{down: 1}
	default:
		return delta{}
	}
}

// apply computes the next state for a vote request. Requesting the state
// already held toggles it off.
func apply(cur State, req State) (State, Transition, delta) {
	next := req
	tr := TransitionCast
	switch {
	case cur == req:
		next, tr = NoVote, TransitionToggleOff
	case cur != NoVote:
		tr = TransitionSwitch
	}
	return next, tr, diff(cur, next)
}

// remove clears whatever vote is held.
func remove(cur State) (State, Transition, delta) {
	if cur == NoVote {
		return NoVote, TransitionNoop, delta{}
	}
	return NoVote, TransitionRemove, diff(cur, NoVote)
}

func diff(from, to State) delta {
	a, b := counterOf(from), counterOf(to)
	return delta{up: b.up - a.up, down: b.down - a.down}
}
