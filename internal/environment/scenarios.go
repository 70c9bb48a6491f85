package environment

import "github.com/courierlab/gridcourier/pkg/types"

// Scenario factories used by the CLI, the demo, and the test suite. Each one
// builds a fixed map so runs are comparable across strategies.

// SmallTest is a 10x10 city block: a building cluster in the middle, grass on
// the fringe, one patrolling obstacle.
func SmallTest() *Environment {
	env := mustNew(10, 10)
	env.SetTerrainRegion(3, 3, 5, 4, types.Building)
	env.SetTerrainRegion(0, 8, 9, 9, types.Grass)
	env.SetTerrainRegion(7, 0, 8, 1, types.Water)
	env.InjectObstacle(ObstacleSchedule{
		Name:      "patrol",
		Positions: line(types.Position{X: 1, Y: 6}, types.Position{X: 8, Y: 6}),
	})
	return env
}

// MediumTest is a 20x20 map with two building blocks, a river and a mountain
// ridge.
func MediumTest() *Environment {
	env := mustNew(20, 20)
	env.SetTerrainRegion(4, 4, 7, 7, types.Building)
	env.SetTerrainRegion(12, 10, 15, 13, types.Building)
	env.SetTerrainRegion(0, 15, 19, 16, types.Water)
	env.SetTerrainRegion(9, 0, 10, 8, types.Mountain)
	env.InjectObstacle(ObstacleSchedule{
		Name:      "truck",
		Positions: line(types.Position{X: 2, Y: 12}, types.Position{X: 17, Y: 12}),
	})
	return env
}

// LargeTest is a 50x50 map with a downtown grid of buildings.
func LargeTest() *Environment {
	env := mustNew(50, 50)
	for bx := 5; bx < 45; bx += 10 {
		for by := 5; by < 45; by += 10 {
			env.SetTerrainRegion(bx, by, bx+3, by+3, types.Building)
		}
	}
	env.SetTerrainRegion(0, 24, 49, 25, types.Grass)
	env.SetTerrainRegion(20, 0, 21, 49, types.Grass)
	return env
}

// DynamicTest is a 15x15 map dominated by moving traffic, built to provoke
// replanning.
func DynamicTest() *Environment {
	env := mustNew(15, 15)
	env.SetTerrainRegion(5, 5, 7, 7, types.Building)
	env.InjectObstacle(ObstacleSchedule{
		Name:      "horizontal_car",
		Positions: shuttle(types.Position{X: 1, Y: 3}, types.Position{X: 13, Y: 3}),
	})
	env.InjectObstacle(ObstacleSchedule{
		Name:      "vertical_car",
		Positions: shuttle(types.Position{X: 10, Y: 1}, types.Position{X: 10, Y: 13}),
	})
	return env
}

// Demo is the 12x12 scenario from the scripted demonstration: two building
// blocks, grass and water margins, and three moving vehicles.
func Demo() *Environment {
	env := mustNew(12, 12)
	env.SetTerrainRegion(3, 3, 5, 5, types.Building)
	env.SetTerrainRegion(8, 8, 10, 10, types.Building)
	env.SetTerrainRegion(0, 0, 11, 1, types.Grass)
	env.SetTerrainRegion(10, 0, 11, 11, types.Water)
	env.InjectObstacle(ObstacleSchedule{
		Name:      "horizontal_car",
		Positions: shuttle(types.Position{X: 1, Y: 6}, types.Position{X: 10, Y: 6}),
	})
	env.InjectObstacle(ObstacleSchedule{
		Name:      "vertical_car",
		Positions: shuttle(types.Position{X: 6, Y: 1}, types.Position{X: 6, Y: 10}),
	})
	diagonal := make([]types.Position, 0, 20)
	for i := 1; i <= 10; i++ {
		diagonal = append(diagonal, types.Position{X: i, Y: i})
	}
	for i := 10; i >= 1; i-- {
		diagonal = append(diagonal, types.Position{X: i, Y: i})
	}
	env.InjectObstacle(ObstacleSchedule{Name: "diagonal_car", Positions: diagonal})
	return env
}

func mustNew(width, height int) *Environment {
	env, err := New(width, height)
	if err != nil {
		panic(err) // factory dimensions are compile-time constants
	}
	return env
}

// line returns the straight one-way sequence from a to b along one axis.
func line(a, b types.Position) []types.Position {
	var out []types.Position
	if a.Y == b.Y {
		for x := a.X; x <= b.X; x++ {
			out = append(out, types.Position{X: x, Y: a.Y})
		}
	} else {
		for y := a.Y; y <= b.Y; y++ {
			out = append(out, types.Position{X: a.X, Y: y})
		}
	}
	return out
}

// shuttle returns the back-and-forth sequence a -> b -> a (endpoints not
// duplicated), producing a cyclic patrol.
func shuttle(a, b types.Position) []types.Position {
	forward := line(a, b)
	out := make([]types.Position, 0, 2*len(forward)-2)
	out = append(out, forward...)
	for i := len(forward) - 2; i >= 1; i-- {
		out = append(out, forward[i])
	}
	return out
}
