package planner

// Local-search metaheuristics. Both are intentionally neither optimal nor
// complete; the agent layer may fall back to a complete strategy when they
// fail, but the planner reports their failures as ordinary NoPathFound.

import (
	"math"
	"math/rand"

	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/pkg/types"
)

// hillClimb walks greedily to the best unvisited neighbor by the cost-to-goal
// estimate, accepting only strict improvements. At a local optimum it
// restarts with a freshly randomized neighbor ordering, up to MaxRestarts
// attempts. Every returned path still begins at the requested start; the
// randomization perturbs the descent, not the origin.
func (p *Planner) hillClimb(env *environment.Environment, req types.PlanRequest, rng *rand.Rand) (*types.Path, error) {
	h, err := heuristicFor(req.Heuristic, req.Connectivity)
	if err != nil {
		return nil, err
	}
	base := neighborOffsets(req.Connectivity)
	expanded := 0

	for attempt := 0; attempt <= p.cfg.MaxRestarts; attempt++ {
		offsets := base
		if attempt > 0 {
			offsets = make([]types.Position, len(base))
			copy(offsets, base)
			rng.Shuffle(len(offsets), func(i, j int) {
				offsets[i], offsets[j] = offsets[j], offsets[i]
			})
		}

		steps := []types.Position{req.Start}
		visited := map[types.Position]struct{}{req.Start: {}}
		current := req.Start
		cost := 0

		for {
			if current == req.Goal {
				return &types.Path{
					Steps: steps,
					Cost:  cost,
					Stats: types.PathStats{NodesExpanded: expanded},
				}, nil
			}
			expanded++
			if expanded > p.cfg.MaxExpansions {
				return nil, ErrNoPathFound
			}

			arrival := req.TimeOffset + int64(len(steps))
			currentH := h(current, req.Goal)
			bestH := currentH
			var bestPos types.Position
			found := false
			for _, d := range offsets {
				next := types.Position{X: current.X + d.X, Y: current.Y + d.Y}
				if _, seen := visited[next]; seen {
					continue
				}
				if env.IsBlocked(next, arrival) {
					continue
				}
				if nh := h(next, req.Goal); nh < bestH {
					bestH = nh
					bestPos = next
					found = true
				}
			}
			if !found {
				break // local optimum; restart
			}
			stepCost, err := env.Cost(bestPos)
			if err != nil {
				break
			}
			cost += stepCost
			visited[bestPos] = struct{}{}
			steps = append(steps, bestPos)
			current = bestPos
		}
	}
	return nil, ErrNoPathFound
}

// anneal performs a seeded stochastic walk. Each step draws one random
// feasible neighbor: a strict improvement of the cost-to-goal estimate is
// accepted unconditionally, a non-improvement with probability exp(-delta/T).
// The temperature decays geometrically every step. The walk ends at the goal,
// on temperature underflow, or when the step budget runs out - whichever
// comes first. A fixed seed replays the identical walk and the identical
// acceptance sequence.
func (p *Planner) anneal(env *environment.Environment, req types.PlanRequest, rng *rand.Rand) (*types.Path, error) {
	h, err := heuristicFor(req.Heuristic, req.Connectivity)
	if err != nil {
		return nil, err
	}
	offsets := neighborOffsets(req.Connectivity)

	steps := []types.Position{req.Start}
	current := req.Start
	cost := 0
	temp := p.cfg.InitialTemp
	expanded := 0

	for step := 0; step < p.cfg.AnnealingSteps; step++ {
		if current == req.Goal {
			return &types.Path{
				Steps: steps,
				Cost:  cost,
				Stats: types.PathStats{NodesExpanded: expanded},
			}, nil
		}
		if temp < p.cfg.MinTemp {
			break
		}

		arrival := req.TimeOffset + int64(len(steps))
		feasible := make([]types.Position, 0, len(offsets))
		for _, d := range offsets {
			next := types.Position{X: current.X + d.X, Y: current.Y + d.Y}
			if !env.IsBlocked(next, arrival) {
				feasible = append(feasible, next)
			}
		}
		if len(feasible) == 0 {
			break
		}
		expanded++

		candidate := feasible[rng.Intn(len(feasible))]
		delta := h(candidate, req.Goal) - h(current, req.Goal)
		accepted := delta < 0 || rng.Float64() < math.Exp(-delta/temp)
		if p.cfg.AcceptTrace != nil {
			p.cfg.AcceptTrace(accepted)
		}
		if accepted {
			stepCost, err := env.Cost(candidate)
			if err != nil {
				break
			}
			cost += stepCost
			steps = append(steps, candidate)
			current = candidate
		}
		temp *= p.cfg.Cooling
	}

	if current == req.Goal {
		return &types.Path{
			Steps: steps,
			Cost:  cost,
			Stats: types.PathStats{NodesExpanded: expanded},
		}, nil
	}
	return nil, ErrNoPathFound
}
