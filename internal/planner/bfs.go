package planner

import (
	"fmt"

	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/pkg/types"
)

// bfs expands the frontier level by level, guaranteeing the minimum edge
// count when all traversable cells are treated as uniform. The reported Cost
// still sums the weighted terrain of the found path, so on weighted maps BFS
// is documented as edge-optimal but not cost-optimal.
func (p *Planner) bfs(env *environment.Environment, req types.PlanRequest) (*types.Path, error) {
	offsets := neighborOffsets(req.Connectivity)

	type node struct {
		pos   types.Position
		depth int64
	}
	queue := []node{{pos: req.Start, depth: 0}}
	visited := map[types.Position]struct{}{req.Start: {}}
	cameFrom := make(map[types.Position]types.Position)
	expanded := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.pos == req.Goal {
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

		arrival := req.TimeOffset + cur.depth + 1
		for _, d := range offsets {
			next := types.Position{X: cur.pos.X + d.X, Y: cur.pos.Y + d.Y}
			if _, seen := visited[next]; seen {
				continue
			}
			if env.IsBlocked(next, arrival) {
				continue
			}
			visited[next] = struct{}{}
			cameFrom[next] = cur.pos
			queue = append(queue, node{pos: next, depth: cur.depth + 1})
		}
	}
	return nil, ErrNoPathFound
}
