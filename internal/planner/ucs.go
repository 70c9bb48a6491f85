package planner

import (
	"container/heap"
	"fmt"

	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/pkg/types"
)

// uniformCost expands nodes in order of cumulative path cost, with ties
// broken by insertion order for determinism. Optimal on any non-negative
// weighted grid. Duplicate heap entries are handled lazily: a popped node
// already finalized in the closed set is skipped.
func (p *Planner) uniformCost(env *environment.Environment, req types.PlanRequest) (*types.Path, error) {
	offsets := neighborOffsets(req.Connectivity)

	pq := make(minPQ, 0, 64)
	heap.Init(&pq)
	var seq uint64
	heap.Push(&pq, &pqItem{pos: req.Start, priority: 0, seq: seq, g: 0, depth: 0})

	closed := make(map[types.Position]struct{})
	best := map[types.Position]int{req.Start: 0}
	cameFrom := make(map[types.Position]types.Position)
	expanded := 0

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*pqItem)
		if _, done := closed[item.pos]; done {
			continue
		}
		closed[item.pos] = struct{}{}

		if item.pos == req.Goal {
			steps, cost := reconstruct(env, cameFrom, req.Start, req.Goal)
			return &types.Path{
				Steps: steps,
				Cost:  cost,
				Stats: types.PathStats{NodesExpanded: expanded},
			}, nil
		}

		expanded++
		if expanded > p.cfg.MaxExpansions {
			return nil, fmt.Errorf("%w: expansion budget exhausted", ErrNoPathFound)
		}

		arrival := req.TimeOffset + item.depth + 1
		for _, d := range offsets {
			next := types.Position{X: item.pos.X + d.X, Y: item.pos.Y + d.Y}
			if _, done := closed[next]; done {
				continue
			}
			if env.IsBlocked(next, arrival) {
				continue
			}
			stepCost, err := env.Cost(next)
			if err != nil {
				continue
			}
			g := item.g + stepCost
			if known, ok := best[next]; ok && g >= known {
				continue
			}
			best[next] = g
			cameFrom[next] = item.pos
			seq++
			heap.Push(&pq, &pqItem{
				pos:      next,
				priority: float64(g),
				seq:      seq,
				g:        g,
				depth:    item.depth + 1,
			})
		}
	}
	return nil, ErrNoPathFound
}
