package planner

import "errors"

var (
	// ErrNoPathFound indicates the search space was exhausted without
	// reaching the goal. Reported to the caller, never retried internally.
	ErrNoPathFound = errors.New("planner: no path found")
	// ErrInvalidHeuristic indicates the diagonal heuristic was requested
	// under 4-connected movement, which breaks admissibility.
	ErrInvalidHeuristic = errors.New("planner: diagonal heuristic requires 8-connected movement")
	// ErrUnknownStrategy indicates a strategy identifier outside the closed
	// variant set.
	ErrUnknownStrategy = errors.New("planner: unknown strategy")
	// ErrUnknownHeuristic indicates a heuristic identifier outside the known
	// set.
	ErrUnknownHeuristic = errors.New("planner: unknown heuristic")
)
