// ============================================================================
// Planner - the family of route-search strategies
// ============================================================================
//
// Package: internal/planner
// Purpose: Pure planning calls from (environment, start, goal, time offset)
//          to a Path or a failure value.
//
// Strategy set (closed):
//   bfs                 - level-order expansion, minimum edge count; not
//                         cost-optimal on weighted terrain.
//   uniform_cost        - min-priority expansion on cumulative cost; optimal
//                         on any non-negative weighted grid.
//   astar               - f = g + h with manhattan / euclidean / diagonal
//                         heuristics; optimal with an admissible heuristic.
//   hill_climbing       - greedy descent with bounded randomized restarts;
//                         non-optimal and non-complete by design.
//   simulated_annealing - seeded stochastic walk with geometric cooling.
//
// All strategies are time-aware: a neighbor is infeasible when the
// environment blocks it at the estimated arrival time (time offset plus the
// number of moves taken to reach it), not merely "ever blocked".
//
// Determinism: priority ties break by lower h then insertion order; the
// local-search strategies draw from an explicitly seeded random source so a
// fixed seed replays the identical search.
//
// ============================================================================

package planner

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/pkg/types"
)

// Config bounds and seeds the search strategies.
type Config struct {
	// MaxExpansions bounds node expansion per call; there is no cancellation
	// concept for a single planning call. Zero means DefaultMaxExpansions.
	MaxExpansions int
	// MaxRestarts bounds hill-climbing's randomized restarts.
	MaxRestarts int
	// AnnealingSteps bounds the simulated-annealing walk.
	AnnealingSteps int
	// InitialTemp, Cooling and MinTemp drive the annealing schedule.
	InitialTemp float64
	Cooling     float64
	MinTemp     float64
	// Seed makes the local-search strategies reproducible.
	Seed int64
	// AcceptTrace, when set, observes every annealing accept/reject draw.
	// Used by tests to verify replay determinism.
	AcceptTrace func(accepted bool)
}

// Defaults for unset Config fields.
const (
	DefaultMaxExpansions  = 200_000
	DefaultMaxRestarts    = 10
	DefaultAnnealingSteps = 20_000
	DefaultInitialTemp    = 10.0
	DefaultCooling        = 0.995
	DefaultMinTemp        = 1e-6
)

// Observer receives per-call planning outcomes, for metrics export.
type Observer interface {
	RecordPlan(strategy types.Strategy, stats types.PathStats, err error)
}

// Planner dispatches a PlanRequest to its strategy implementation.
type Planner struct {
	cfg      Config
	observer Observer
	logger   *slog.Logger
}

// New creates a planner, filling in defaults for zero Config fields.
func New(cfg Config) *Planner {
	if cfg.MaxExpansions <= 0 {
		cfg.MaxExpansions = DefaultMaxExpansions
	}
	if cfg.MaxRestarts <= 0 {
		cfg.MaxRestarts = DefaultMaxRestarts
	}
	if cfg.AnnealingSteps <= 0 {
		cfg.AnnealingSteps = DefaultAnnealingSteps
	}
	if cfg.InitialTemp <= 0 {
		cfg.InitialTemp = DefaultInitialTemp
	}
	if cfg.Cooling <= 0 || cfg.Cooling >= 1 {
		cfg.Cooling = DefaultCooling
	}
	if cfg.MinTemp <= 0 {
		cfg.MinTemp = DefaultMinTemp
	}
	return &Planner{
		cfg:    cfg,
		logger: slog.With("component", "planner"),
	}
}

// SetObserver attaches a metrics sink. Call before the planner is shared.
func (p *Planner) SetObserver(o Observer) {
	p.observer = o
}

// Plan computes a path for the request or fails with a planner error.
// Validation rejects out-of-bounds endpoints and inadmissible heuristic
// pairings before any search starts. The returned path always starts at
// req.Start and ends at req.Goal.
func (p *Planner) Plan(env *environment.Environment, req types.PlanRequest) (*types.Path, error) {
	if err := validate(env, req); err != nil {
		return nil, err
	}

	started := time.Now()
	var (
		path *types.Path
		err  error
	)
	switch req.Strategy {
	case types.StrategyBFS:
		path, err = p.bfs(env, req)
	case types.StrategyUniformCost:
		path, err = p.uniformCost(env, req)
	case types.StrategyAStar:
		path, err = p.astar(env, req)
	case types.StrategyHillClimb:
		path, err = p.hillClimb(env, req, p.rng())
	case types.StrategyAnnealing:
		path, err = p.anneal(env, req, p.rng())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, req.Strategy)
	}
	if err != nil {
		if p.observer != nil {
			p.observer.RecordPlan(req.Strategy, types.PathStats{PlanningTime: time.Since(started)}, err)
		}
		p.logger.Debug("plan failed",
			"strategy", req.Strategy,
			"start", req.Start,
			"goal", req.Goal,
			"err", err)
		return nil, err
	}

	path.Stats.PlanningTime = time.Since(started)
	if p.observer != nil {
		p.observer.RecordPlan(req.Strategy, path.Stats, nil)
	}
	p.logger.Debug("plan complete",
		"strategy", req.Strategy,
		"cost", path.Cost,
		"len", path.Len(),
		"expanded", path.Stats.NodesExpanded,
		"elapsed", path.Stats.PlanningTime)
	return path, nil
}

// rng builds a fresh seeded source per call so repeated plans with the same
// seed replay identically.
func (p *Planner) rng() *rand.Rand {
	return rand.New(rand.NewSource(p.cfg.Seed))
}

func validate(env *environment.Environment, req types.PlanRequest) error {
	if !env.InBounds(req.Start) {
		return fmt.Errorf("%w: start %s", environment.ErrOutOfBounds, req.Start)
	}
	if !env.InBounds(req.Goal) {
		return fmt.Errorf("%w: goal %s", environment.ErrOutOfBounds, req.Goal)
	}
	// Heuristic pairing is validated for every strategy so that a cached
	// request key is either always valid or always rejected.
	if _, err := heuristicFor(req.Heuristic, req.Connectivity); err != nil {
		return err
	}
	if !env.Passable(req.Start) || !env.Passable(req.Goal) {
		return fmt.Errorf("%w: endpoint on impassable terrain", ErrNoPathFound)
	}
	return nil
}

// neighborOffsets returns the movement offsets in a fixed order; the order is
// part of the deterministic tie-breaking contract.
func neighborOffsets(conn types.Connectivity) []types.Position {
	offsets := []types.Position{
		{X: 0, Y: -1},
		{X: 1, Y: 0},
		{X: 0, Y: 1},
		{X: -1, Y: 0},
	}
	if conn == types.Conn8 {
		offsets = append(offsets,
			types.Position{X: 1, Y: -1},
			types.Position{X: 1, Y: 1},
			types.Position{X: -1, Y: 1},
			types.Position{X: -1, Y: -1},
		)
	}
	return offsets
}

// reconstruct walks the predecessor tree back from the goal and computes the
// weighted cost of the resulting path. The start cell's own terrain is not
// charged; each move pays the cost of the cell entered.
func reconstruct(env *environment.Environment, cameFrom map[types.Position]types.Position, start, goal types.Position) ([]types.Position, int) {
	steps := []types.Position{goal}
	for cur := goal; cur != start; {
		cur = cameFrom[cur]
		steps = append(steps, cur)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	total := 0
	for _, pos := range steps[1:] {
		cost, err := env.Cost(pos)
		if err != nil {
			// Impassable cells are filtered during expansion.
			continue
		}
		total += cost
	}
	return steps, total
}
