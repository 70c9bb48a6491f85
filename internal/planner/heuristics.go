package planner

import (
	"math"

	"github.com/courierlab/gridcourier/pkg/types"
)

// heuristicFunc estimates the remaining cost from a to goal.
type heuristicFunc func(a, goal types.Position) float64

// manhattan is |dx| + |dy|: admissible and consistent for 4-connected
// movement on unit-cost terrain.
func manhattan(a, goal types.Position) float64 {
	return float64(abs(a.X-goal.X) + abs(a.Y-goal.Y))
}

// euclidean is sqrt(dx^2 + dy^2): admissible on 4-connected grids but less
// informed than manhattan, so it prunes fewer nodes.
func euclidean(a, goal types.Position) float64 {
	dx := float64(a.X - goal.X)
	dy := float64(a.Y - goal.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// diagonal is max(dx,dy) + (sqrt2-1)*min(dx,dy), the octile distance for
// 8-connected movement. Pairing it with 4-connected movement overestimates
// and is rejected at request validation.
func diagonal(a, goal types.Position) float64 {
	dx := float64(abs(a.X - goal.X))
	dy := float64(abs(a.Y - goal.Y))
	return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
}

// heuristicFor resolves the heuristic identifier, validating it against the
// connectivity model. HeuristicNone defaults to manhattan.
func heuristicFor(h types.Heuristic, conn types.Connectivity) (heuristicFunc, error) {
	switch h {
	case types.HeuristicNone, types.HeuristicManhattan:
		return manhattan, nil
	case types.HeuristicEuclidean:
		return euclidean, nil
	case types.HeuristicDiagonal:
		if conn != types.Conn8 {
			return nil, ErrInvalidHeuristic
		}
		return diagonal, nil
	default:
		return nil, ErrUnknownHeuristic
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
