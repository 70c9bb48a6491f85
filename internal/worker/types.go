package worker

import (
	"time"

	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/pkg/types"
)

// PlanFunc executes one planning call. The pool stays decoupled from the
// planner package through this indirection.
type PlanFunc func(env *environment.Environment, req types.PlanRequest) (*types.Path, error)

// Task is one planning call to run on the pool. Env is read-only from the
// worker's point of view; EnvVersion pins the snapshot the result belongs to.
type Task struct {
	ID         string
	Env        *environment.Environment
	EnvVersion uint64
	Request    types.PlanRequest
}

// Result is the outcome of a planning task.
type Result struct {
	TaskID     string
	Strategy   types.Strategy
	EnvVersion uint64
	Path       *types.Path
	Err        error
	Duration   time.Duration
}
