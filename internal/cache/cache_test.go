package cache

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/internal/planner"
	"github.com/courierlab/gridcourier/pkg/types"
)

func testEnv(t *testing.T) *environment.Environment {
	t.Helper()
	env, err := environment.New(6, 6)
	require.NoError(t, err)
	return env
}

func request(x, y int) types.PlanRequest {
	return types.PlanRequest{
		Start:    types.Position{X: 0, Y: 0},
		Goal:     types.Position{X: x, Y: y},
		Strategy: types.StrategyAStar,
	}
}

// countingPlanner wraps a real planner and counts invocations.
func countingPlanner(calls *atomic.Int64) PlanFunc {
	p := planner.New(planner.Config{})
	return func(env *environment.Environment, req types.PlanRequest) (*types.Path, error) {
		calls.Add(1)
		return p.Plan(env, req)
	}
}

func TestHitReturnsIdenticalResultWithoutRecomputing(t *testing.T) {
	env := testEnv(t)
	var calls atomic.Int64
	c := New(8, countingPlanner(&calls))

	first, err := c.Get(env, request(5, 5))
	require.NoError(t, err)
	second, err := c.Get(env, request(5, 5))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load())

	stats := c.Snapshot()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestVersionBumpInvalidatesEntry(t *testing.T) {
	env := testEnv(t)
	var calls atomic.Int64
	c := New(8, countingPlanner(&calls))

	_, err := c.Get(env, request(5, 5))
	require.NoError(t, err)

	// Injection bumps the environment version; the cached entry is stale.
	env.InjectObstacle(environment.ObstacleSchedule{
		Positions: []types.Position{{X: 3, Y: 3}},
	})

	_, err = c.Get(env, request(5, 5))
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())

	stats := c.Snapshot()
	assert.Equal(t, uint64(1), stats.StaleDrops)
	assert.Equal(t, uint64(0), stats.Hits)

	// The recomputed entry is fresh for the new version.
	_, err = c.Get(env, request(5, 5))
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestLRUEvictionOverCapacity(t *testing.T) {
	env := testEnv(t)
	var calls atomic.Int64
	c := New(2, countingPlanner(&calls))

	_, err := c.Get(env, request(1, 1))
	require.NoError(t, err)
	_, err = c.Get(env, request(2, 2))
	require.NoError(t, err)

	// Touch (1,1) so (2,2) becomes the least recently used entry.
	_, err = c.Get(env, request(1, 1))
	require.NoError(t, err)

	_, err = c.Get(env, request(3, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(1), c.Snapshot().Evictions)

	// (2,2) was evicted and recomputes; (1,1) survived.
	calls.Store(0)
	_, err = c.Get(env, request(1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(0), calls.Load())
	_, err = c.Get(env, request(2, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())
}

func TestReturnedPathIsIsolatedFromCache(t *testing.T) {
	env := testEnv(t)
	var calls atomic.Int64
	c := New(4, countingPlanner(&calls))

	first, err := c.Get(env, request(4, 4))
	require.NoError(t, err)
	first.Steps[0] = types.Position{X: 99, Y: 99}
	first.Cost = -1

	second, err := c.Get(env, request(4, 4))
	require.NoError(t, err)
	assert.Equal(t, types.Position{X: 0, Y: 0}, second.Steps[0])
	assert.GreaterOrEqual(t, second.Cost, 0)
	assert.Equal(t, int64(1), calls.Load())
}

func TestPlanningFailuresAreNeverCached(t *testing.T) {
	env := testEnv(t)
	require.NoError(t, env.SetTerrain(types.Position{X: 5, Y: 5}, types.Building))
	var calls atomic.Int64
	c := New(4, countingPlanner(&calls))

	_, err := c.Get(env, request(5, 5))
	assert.ErrorIs(t, err, planner.ErrNoPathFound)
	_, err = c.Get(env, request(5, 5))
	assert.ErrorIs(t, err, planner.ErrNoPathFound)

	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCapacityClampedToOne(t *testing.T) {
	env := testEnv(t)
	var calls atomic.Int64
	c := New(0, countingPlanner(&calls))

	_, err := c.Get(env, request(1, 1))
	require.NoError(t, err)
	_, err = c.Get(env, request(2, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

type recordingObserver struct {
	hits, misses, evictions, stale int
}

func (o *recordingObserver) RecordCacheLookup(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}
func (o *recordingObserver) RecordEviction()  { o.evictions++ }
func (o *recordingObserver) RecordStaleDrop() { o.stale++ }

func TestObserverSeesLookups(t *testing.T) {
	env := testEnv(t)
	var calls atomic.Int64
	c := New(4, countingPlanner(&calls))
	obs := &recordingObserver{}
	c.SetObserver(obs)

	_, err := c.Get(env, request(2, 2))
	require.NoError(t, err)
	_, err = c.Get(env, request(2, 2))
	require.NoError(t, err)
	env.InjectObstacle(environment.ObstacleSchedule{Positions: []types.Position{{X: 3, Y: 0}}})
	_, err = c.Get(env, request(2, 2))
	require.NoError(t, err)

	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 2, obs.misses)
	assert.Equal(t, 1, obs.stale)
}
