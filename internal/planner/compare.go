package planner

import (
	"fmt"
	"time"

	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/internal/worker"
	"github.com/courierlab/gridcourier/pkg/types"
)

// StrategyResult is one row of a cross-strategy comparison.
type StrategyResult struct {
	Strategy   types.Strategy `json:"strategy"`
	Success    bool           `json:"success"`
	Path       *types.Path    `json:"path,omitempty"`
	Err        string         `json:"error,omitempty"`
	Elapsed    time.Duration  `json:"elapsed"`
	EnvVersion uint64         `json:"env_version"`
}

// Compare runs every listed strategy against the same base problem in
// parallel on a bounded worker pool; base.Strategy is overridden per row. The
// calls share only the read-mostly environment; each result records the
// environment version it was computed against. Results come back in the order
// strategies were given.
func (p *Planner) Compare(env *environment.Environment, base types.PlanRequest, strategies []types.Strategy) ([]StrategyResult, error) {
	if len(strategies) == 0 {
		strategies = types.Strategies()
	}

	pool := worker.NewPool(len(strategies))
	if err := pool.Start(min(len(strategies), 4), p.Plan); err != nil {
		return nil, fmt.Errorf("failed to start comparison pool: %w", err)
	}
	defer pool.Stop()

	version := env.Version()
	for i, strategy := range strategies {
		req := base
		req.Strategy = strategy
		task := worker.Task{
			ID:         compareTaskID(i, strategy),
			Env:        env,
			EnvVersion: version,
			Request:    req,
		}
		if err := pool.Submit(task); err != nil {
			return nil, fmt.Errorf("failed to submit %s: %w", strategy, err)
		}
	}

	// Keyed by task ID, not strategy: callers may list a strategy twice and
	// every submitted row must come back.
	byTask := make(map[string]StrategyResult, len(strategies))
	for range strategies {
		res, err := pool.ReceiveResult()
		if err != nil {
			return nil, fmt.Errorf("comparison pool closed early: %w", err)
		}
		row := StrategyResult{
			Strategy:   res.Strategy,
			Success:    res.Err == nil,
			Path:       res.Path,
			Elapsed:    res.Duration,
			EnvVersion: res.EnvVersion,
		}
		if res.Err != nil {
			row.Err = res.Err.Error()
		}
		byTask[res.TaskID] = row
	}

	ordered := make([]StrategyResult, 0, len(strategies))
	for i, strategy := range strategies {
		ordered = append(ordered, byTask[compareTaskID(i, strategy)])
	}
	return ordered, nil
}

func compareTaskID(i int, strategy types.Strategy) string {
	return fmt.Sprintf("compare-%d-%s", i, strategy)
}
