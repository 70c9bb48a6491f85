package planner

import (
	"container/heap"
	"fmt"

	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/pkg/types"
)

// astar expands nodes ordered by f = g + h. With an admissible, consistent
// heuristic it returns a cost-optimal path while expanding no more nodes than
// uniform-cost search. Ties break by lower h and then insertion order, so two
// runs over the same snapshot produce the same path.
func (p *Planner) astar(env *environment.Environment, req types.PlanRequest) (*types.Path, error) {
	h, err := heuristicFor(req.Heuristic, req.Connectivity)
	if err != nil {
		return nil, err
	}
	offsets := neighborOffsets(req.Connectivity)

	pq := make(minPQ, 0, 64)
	heap.Init(&pq)
	var seq uint64
	h0 := h(req.Start, req.Goal)
	heap.Push(&pq, &pqItem{pos: req.Start, priority: h0, h: h0, seq: seq, g: 0, depth: 0})

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
			hn := h(next, req.Goal)
			seq++
			heap.Push(&pq, &pqItem{
				pos:      next,
				priority: float64(g) + hn,
				h:        hn,
				seq:      seq,
				g:        g,
				depth:    item.depth + 1,
			})
		}
	}
	return nil, ErrNoPathFound
}
