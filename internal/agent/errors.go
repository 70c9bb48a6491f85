package agent

import "errors"

var (
	// ErrReplanLimitExceeded terminates the agent after too many replanning
	// attempts without a viable path.
	ErrReplanLimitExceeded = errors.New("agent: replan limit exceeded")
	// ErrStepBudgetExceeded terminates the agent after too many moves
	// without arrival.
	ErrStepBudgetExceeded = errors.New("agent: step budget exceeded")
	// ErrFuelExhausted terminates the agent once its fuel runs out.
	ErrFuelExhausted = errors.New("agent: fuel exhausted")
	// ErrTerminal indicates Tick was called after a terminal state.
	ErrTerminal = errors.New("agent: already in a terminal state")
)
