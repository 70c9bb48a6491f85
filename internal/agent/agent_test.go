package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierlab/gridcourier/internal/cache"
	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/internal/eventlog"
	"github.com/courierlab/gridcourier/internal/planner"
	"github.com/courierlab/gridcourier/pkg/types"
)

type fixture struct {
	env      *environment.Environment
	cache    *cache.Cache
	recorder *eventlog.Recorder
}

func newFixture(t *testing.T, width, height int) *fixture {
	t.Helper()
	env, err := environment.New(width, height)
	require.NoError(t, err)
	p := planner.New(planner.Config{Seed: 1})
	return &fixture{
		env:      env,
		cache:    cache.New(32, p.Plan),
		recorder: eventlog.NewRecorder(),
	}
}

func (f *fixture) agent(t *testing.T, cfg Config) *Agent {
	t.Helper()
	a, err := New(f.env, f.cache, f.recorder, cfg)
	require.NoError(t, err)
	return a
}

func TestRunArrivesOnOpenGrid(t *testing.T) {
	f := newFixture(t, 6, 6)
	a := f.agent(t, Config{
		Start: types.Position{X: 0, Y: 0},
		Goal:  types.Position{X: 5, Y: 5},
	})

	final, err := a.Run()
	require.NoError(t, err)
	assert.Equal(t, types.StatusArrived, final.Status)
	assert.Equal(t, types.Position{X: 5, Y: 5}, final.Position)
	assert.Equal(t, 10, final.Steps)
	assert.Equal(t, int64(10), final.Time)
	assert.Equal(t, 0, final.Replans)

	assert.Equal(t, 1, f.recorder.CountTrigger(types.TriggerInitialPlan))
	assert.Equal(t, 10, f.recorder.CountTrigger(types.TriggerMove))
	assert.Equal(t, 1, f.recorder.CountTrigger(types.TriggerArrived))
}

func TestStartEqualsGoal(t *testing.T) {
	f := newFixture(t, 4, 4)
	a := f.agent(t, Config{
		Start: types.Position{X: 2, Y: 2},
		Goal:  types.Position{X: 2, Y: 2},
	})

	final, err := a.Run()
	require.NoError(t, err)
	assert.Equal(t, types.StatusArrived, final.Status)
	assert.Equal(t, 0, final.Steps)
}

func TestTickAfterTerminalReturnsErrTerminal(t *testing.T) {
	f := newFixture(t, 4, 4)
	a := f.agent(t, Config{
		Start: types.Position{X: 0, Y: 0},
		Goal:  types.Position{X: 0, Y: 0},
	})

	_, err := a.Run()
	require.NoError(t, err)
	_, _, err = a.Tick()
	assert.ErrorIs(t, err, ErrTerminal)
}

func TestBlockedCollapsesIntoReplanWithinOneTick(t *testing.T) {
	f := newFixture(t, 6, 3)
	a := f.agent(t, Config{
		Start: types.Position{X: 0, Y: 0},
		Goal:  types.Position{X: 5, Y: 0},
	})

	// Tick 1: initial plan. Tick 2: first move.
	_, _, err := a.Tick()
	require.NoError(t, err)
	state, _, err := a.Tick()
	require.NoError(t, err)
	require.Equal(t, types.Position{X: 1, Y: 0}, state.Position)

	// Permanently occupy the next planned cell.
	env := f.env
	env.InjectObstacle(environment.ObstacleSchedule{
		Name:      "incident",
		Positions: []types.Position{{X: 2, Y: 0}},
	})

	state, events, err := a.Tick()
	require.NoError(t, err)

	// One tick carries the whole Blocked -> Replanning -> Following hop.
	var triggers []types.TriggerKind
	for _, e := range events {
		triggers = append(triggers, e.Trigger)
	}
	assert.Equal(t, []types.TriggerKind{types.TriggerBlocked, types.TriggerReplan}, triggers)
	assert.Equal(t, types.StatusFollowing, state.Status)
	assert.Equal(t, 1, state.Replans)
	// The blocked tick was spent waiting in place.
	assert.Equal(t, types.Position{X: 1, Y: 0}, state.Position)
	assert.Equal(t, int64(2), state.Time)

	final, err := a.Run()
	require.NoError(t, err)
	assert.Equal(t, types.StatusArrived, final.Status)
	assert.Equal(t, 1, final.Replans)
}

func TestOneReplanForSingleTimeStepObstacle(t *testing.T) {
	f := newFixture(t, 6, 3)
	a := f.agent(t, Config{
		Start: types.Position{X: 0, Y: 0},
		Goal:  types.Position{X: 5, Y: 0},
	})

	// Plan and take the first move so the agent expects (2,0) at t=2.
	_, _, err := a.Tick()
	require.NoError(t, err)
	_, _, err = a.Tick()
	require.NoError(t, err)

	// The obstacle occupies (2,0) only at time step 2 and parks away from
	// the corridor otherwise.
	park := types.Position{X: 2, Y: 2}
	f.env.InjectObstacle(environment.ObstacleSchedule{
		Positions: []types.Position{park, park, {X: 2, Y: 0}, park, park, park, park, park},
	})

	final, err := a.Run()
	require.NoError(t, err)
	assert.Equal(t, types.StatusArrived, final.Status)
	assert.Equal(t, 1, final.Replans)
	assert.Equal(t, 1, f.recorder.CountTrigger(types.TriggerBlocked))
	assert.Equal(t, 1, f.recorder.CountTrigger(types.TriggerReplan))

	// The agent never stood on (2,0) at time 2; it waited out the blocked
	// tick and passed through one step later.
	for _, e := range f.recorder.Events() {
		if e.Trigger == types.TriggerMove && e.Position == (types.Position{X: 2, Y: 0}) {
			assert.NotEqual(t, int64(2), e.Tick)
		}
	}
}

func TestReplanBudgetExhaustionFails(t *testing.T) {
	f := newFixture(t, 6, 1)
	a := f.agent(t, Config{
		Start:        types.Position{X: 0, Y: 0},
		Goal:         types.Position{X: 5, Y: 0},
		ReplanBudget: 3,
	})

	// Plan, move once, then wall the corridor off for good.
	_, _, err := a.Tick()
	require.NoError(t, err)
	_, _, err = a.Tick()
	require.NoError(t, err)
	f.env.InjectObstacle(environment.ObstacleSchedule{
		Positions: []types.Position{{X: 2, Y: 0}},
	})

	final, err := a.Run()
	assert.ErrorIs(t, err, ErrReplanLimitExceeded)
	assert.Equal(t, types.StatusFailed, final.Status)
	assert.Equal(t, 3, final.Replans)
	assert.GreaterOrEqual(t, f.recorder.CountTrigger(types.TriggerReplanFailed), 1)
}

func TestStepBudgetExhaustionFails(t *testing.T) {
	f := newFixture(t, 10, 10)
	a := f.agent(t, Config{
		Start:      types.Position{X: 0, Y: 0},
		Goal:       types.Position{X: 9, Y: 9},
		StepBudget: 4,
	})

	final, err := a.Run()
	assert.ErrorIs(t, err, ErrStepBudgetExceeded)
	assert.Equal(t, types.StatusFailed, final.Status)
	assert.Equal(t, 4, final.Steps)
	assert.Equal(t, 1, f.recorder.CountTrigger(types.TriggerBudgetExceeded))
}

func TestFuelExhaustionFails(t *testing.T) {
	f := newFixture(t, 8, 1)
	a := f.agent(t, Config{
		Start: types.Position{X: 0, Y: 0},
		Goal:  types.Position{X: 7, Y: 0},
		Fuel:  3,
	})

	final, err := a.Run()
	assert.ErrorIs(t, err, ErrFuelExhausted)
	assert.Equal(t, types.StatusFailed, final.Status)
	// Road costs one per move, so exactly three moves were affordable.
	assert.Equal(t, 3, final.Steps)
	assert.Equal(t, float64(0), final.Fuel)
}

func TestFallbackStrategyAfterPrimaryFailure(t *testing.T) {
	// The wall creates a local optimum that defeats greedy descent; the
	// fallback must complete the route.
	f := newFixture(t, 7, 7)
	f.env.SetTerrainRegion(3, 0, 3, 5, types.Building)
	a := f.agent(t, Config{
		Start:    types.Position{X: 0, Y: 0},
		Goal:     types.Position{X: 6, Y: 0},
		Strategy: types.StrategyHillClimb,
		Fallback: types.StrategyAStar,
	})

	final, err := a.Run()
	require.NoError(t, err)
	assert.Equal(t, types.StatusArrived, final.Status)

	// The adopted plan event names the strategy that actually produced it.
	var planned types.Strategy
	for _, e := range f.recorder.Events() {
		if e.Trigger == types.TriggerInitialPlan && e.Outcome == "ok" {
			planned = e.Strategy
		}
	}
	assert.Equal(t, types.StrategyAStar, planned)
}

func TestReplanAnchorsAtCurrentPositionAndTime(t *testing.T) {
	f := newFixture(t, 6, 3)
	a := f.agent(t, Config{
		Start: types.Position{X: 0, Y: 0},
		Goal:  types.Position{X: 5, Y: 0},
	})

	_, _, err := a.Tick()
	require.NoError(t, err)
	_, _, err = a.Tick()
	require.NoError(t, err)
	f.env.InjectObstacle(environment.ObstacleSchedule{
		Positions: []types.Position{{X: 2, Y: 0}},
	})
	state, events, err := a.Tick()
	require.NoError(t, err)

	for _, e := range events {
		if e.Trigger == types.TriggerReplan {
			// The replan event is stamped at the post-wait clock and at the
			// agent's current cell, never the original start.
			assert.Equal(t, state.Time, e.Tick)
			assert.Equal(t, types.Position{X: 1, Y: 0}, e.Position)
		}
	}
	require.NotNil(t, a.Path())
	assert.Equal(t, types.Position{X: 1, Y: 0}, a.Path().Steps[0])
}

func TestInitialPlanFailureRetriesThenFails(t *testing.T) {
	f := newFixture(t, 5, 1)
	require.NoError(t, f.env.SetTerrain(types.Position{X: 2, Y: 0}, types.Building))
	a := f.agent(t, Config{
		Start:        types.Position{X: 0, Y: 0},
		Goal:         types.Position{X: 4, Y: 0},
		ReplanBudget: 2,
	})

	final, err := a.Run()
	assert.ErrorIs(t, err, ErrReplanLimitExceeded)
	assert.Equal(t, types.StatusFailed, final.Status)
	assert.Equal(t, types.Position{X: 0, Y: 0}, final.Position)
	assert.Equal(t, 0, final.Steps)
}

func TestCourierPicksHighestPriorityFirst(t *testing.T) {
	f := newFixture(t, 8, 8)
	tasks := []types.DeliveryTask{
		{PackageID: "low", Pickup: types.Position{X: 1, Y: 1}, Dropoff: types.Position{X: 7, Y: 1}, Priority: 1},
		{PackageID: "high", Pickup: types.Position{X: 1, Y: 6}, Dropoff: types.Position{X: 7, Y: 6}, Priority: 9},
	}
	courier := NewCourier(f.env, f.cache, f.recorder, Config{
		Start: types.Position{X: 0, Y: 0},
	}, tasks)

	stats, err := courier.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Deliveries)

	var order []string
	for _, e := range f.recorder.Events() {
		if e.Trigger == types.TriggerDelivery {
			order = append(order, e.Detail)
		}
	}
	assert.Equal(t, []string{"high", "low"}, order)
}

func TestCourierStopsOnFailedLeg(t *testing.T) {
	f := newFixture(t, 6, 1)
	require.NoError(t, f.env.SetTerrain(types.Position{X: 3, Y: 0}, types.Building))
	tasks := []types.DeliveryTask{
		{PackageID: "stuck", Pickup: types.Position{X: 5, Y: 0}, Dropoff: types.Position{X: 0, Y: 0}, Priority: 1},
	}
	courier := NewCourier(f.env, f.cache, f.recorder, Config{
		Start:        types.Position{X: 0, Y: 0},
		ReplanBudget: 2,
	}, tasks)

	stats, err := courier.Run()
	assert.Error(t, err)
	assert.Equal(t, 0, stats.Deliveries)
}
