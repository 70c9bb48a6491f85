package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/pkg/types"
)

func openGrid(t *testing.T) *environment.Environment {
	t.Helper()
	env, err := environment.New(8, 8)
	require.NoError(t, err)
	return env
}

func TestHillClimbReachesGoalOnOpenGrid(t *testing.T) {
	env := openGrid(t)
	p := New(Config{Seed: 11})

	path, err := p.Plan(env, types.PlanRequest{
		Start:    types.Position{X: 0, Y: 0},
		Goal:     types.Position{X: 7, Y: 7},
		Strategy: types.StrategyHillClimb,
	})
	require.NoError(t, err)
	assert.Equal(t, types.Position{X: 0, Y: 0}, path.Steps[0])
	assert.Equal(t, types.Position{X: 7, Y: 7}, path.Steps[len(path.Steps)-1])
	// Monotone descent on an open grid takes the straight-line move count.
	assert.Equal(t, 14, path.Edges())
}

func TestHillClimbRestartsKeepOrigin(t *testing.T) {
	// A pocket behind the building traps the greedy descent; the restart
	// must begin again from the requested start, not a random cell.
	env, err := environment.New(7, 7)
	require.NoError(t, err)
	env.SetTerrainRegion(3, 0, 3, 5, types.Building)
	p := New(Config{Seed: 5, MaxRestarts: 8})

	path, planErr := p.Plan(env, types.PlanRequest{
		Start:    types.Position{X: 0, Y: 0},
		Goal:     types.Position{X: 6, Y: 0},
		Strategy: types.StrategyHillClimb,
	})
	if planErr != nil {
		// Incompleteness is acceptable; the failure mode must be NoPathFound.
		assert.ErrorIs(t, planErr, ErrNoPathFound)
		return
	}
	assert.Equal(t, types.Position{X: 0, Y: 0}, path.Steps[0])
	assert.Equal(t, types.Position{X: 6, Y: 0}, path.Steps[len(path.Steps)-1])
}

func TestHillClimbDeterministicWithSeed(t *testing.T) {
	env := environment.SmallTest()
	req := types.PlanRequest{
		Start:    types.Position{X: 0, Y: 0},
		Goal:     types.Position{X: 9, Y: 7},
		Strategy: types.StrategyHillClimb,
	}

	a, errA := New(Config{Seed: 21}).Plan(env, req)
	b, errB := New(Config{Seed: 21}).Plan(env, req)
	if errA != nil {
		assert.ErrorIs(t, errB, ErrNoPathFound)
		return
	}
	require.NoError(t, errB)
	assert.Equal(t, a.Steps, b.Steps)
}

func TestAnnealingDeterministicWithSeed(t *testing.T) {
	env := openGrid(t)
	req := types.PlanRequest{
		Start:    types.Position{X: 0, Y: 0},
		Goal:     types.Position{X: 6, Y: 5},
		Strategy: types.StrategyAnnealing,
	}

	var traceA, traceB []bool
	a, errA := New(Config{Seed: 99, AcceptTrace: func(ok bool) { traceA = append(traceA, ok) }}).Plan(env, req)
	b, errB := New(Config{Seed: 99, AcceptTrace: func(ok bool) { traceB = append(traceB, ok) }}).Plan(env, req)

	// Identical seeds replay the identical walk, success or not.
	require.Equal(t, errA == nil, errB == nil)
	assert.Equal(t, traceA, traceB)
	if errA == nil {
		assert.Equal(t, a.Steps, b.Steps)
		assert.Equal(t, types.Position{X: 0, Y: 0}, a.Steps[0])
		assert.Equal(t, types.Position{X: 6, Y: 5}, a.Steps[len(a.Steps)-1])
	}
}

func TestAnnealingRespectsStepBudget(t *testing.T) {
	env := openGrid(t)
	p := New(Config{Seed: 1, AnnealingSteps: 3})

	_, err := p.Plan(env, types.PlanRequest{
		Start:    types.Position{X: 0, Y: 0},
		Goal:     types.Position{X: 7, Y: 7},
		Strategy: types.StrategyAnnealing,
	})
	// Three steps cannot bridge fourteen moves.
	assert.ErrorIs(t, err, ErrNoPathFound)
}

func TestCompareRunsEveryStrategyInOrder(t *testing.T) {
	env := environment.SmallTest()
	p := New(Config{Seed: 42})

	base := types.PlanRequest{
		Start:     types.Position{X: 0, Y: 0},
		Goal:      types.Position{X: 9, Y: 7},
		Heuristic: types.HeuristicManhattan,
	}
	results, err := p.Compare(env, base, types.Strategies())
	require.NoError(t, err)
	require.Len(t, results, len(types.Strategies()))

	version := env.Version()
	for i, want := range types.Strategies() {
		assert.Equal(t, want, results[i].Strategy)
		assert.Equal(t, version, results[i].EnvVersion)
	}

	// The complete strategies always succeed here and agree on cost.
	assert.True(t, results[1].Success, "uniform_cost")
	assert.True(t, results[2].Success, "astar")
	assert.Equal(t, results[1].Path.Cost, results[2].Path.Cost)

	// Failed rows carry the error text instead of a path.
	for _, r := range results {
		if !r.Success {
			assert.Nil(t, r.Path)
			assert.NotEmpty(t, r.Err)
		}
	}
}

func TestCompareKeepsDuplicateStrategyRows(t *testing.T) {
	env := environment.SmallTest()
	p := New(Config{Seed: 42})

	base := types.PlanRequest{
		Start:     types.Position{X: 0, Y: 0},
		Goal:      types.Position{X: 9, Y: 7},
		Heuristic: types.HeuristicManhattan,
	}
	strategies := []types.Strategy{types.StrategyAStar, types.StrategyAStar, types.StrategyUniformCost}
	results, err := p.Compare(env, base, strategies)
	require.NoError(t, err)
	require.Len(t, results, len(strategies))

	for i, want := range strategies {
		assert.Equal(t, want, results[i].Strategy)
		require.True(t, results[i].Success)
		require.NotNil(t, results[i].Path, "row %d lost its result", i)
	}
	assert.Equal(t, results[0].Path.Cost, results[1].Path.Cost)
	assert.Equal(t, results[0].Path.Cost, results[2].Path.Cost)
}
