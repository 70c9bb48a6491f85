package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionOrdering(t *testing.T) {
	assert.True(t, Position{X: 3, Y: 1}.Less(Position{X: 0, Y: 2}))
	assert.True(t, Position{X: 1, Y: 2}.Less(Position{X: 3, Y: 2}))
	assert.False(t, Position{X: 3, Y: 2}.Less(Position{X: 3, Y: 2}))
	assert.Equal(t, "(4,7)", Position{X: 4, Y: 7}.String())
}

func TestTerrainCosts(t *testing.T) {
	cases := []struct {
		terrain Terrain
		cost    int
		ok      bool
	}{
		{Road, 1, true},
		{Grass, 2, true},
		{Water, 3, true},
		{Mountain, 5, true},
		{Building, 0, false},
	}
	for _, tc := range cases {
		cost, ok := tc.terrain.Cost()
		assert.Equal(t, tc.ok, ok, tc.terrain)
		assert.Equal(t, tc.cost, cost, tc.terrain)
		if ok {
			assert.GreaterOrEqual(t, cost, 1, tc.terrain)
		}
	}
	assert.Equal(t, byte('#'), Building.Symbol())
	assert.Equal(t, byte('.'), Road.Symbol())
}

func TestPathHelpers(t *testing.T) {
	var nilPath *Path
	assert.Equal(t, 0, nilPath.Len())
	assert.Equal(t, 0, nilPath.Edges())
	assert.Nil(t, nilPath.Clone())

	p := &Path{Steps: []Position{{0, 0}, {1, 0}, {1, 1}}, Cost: 3}
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 2, p.Edges())

	clone := p.Clone()
	clone.Steps[0] = Position{X: 9, Y: 9}
	assert.Equal(t, Position{X: 0, Y: 0}, p.Steps[0])
}

func TestAgentStatusTerminal(t *testing.T) {
	assert.True(t, StatusArrived.Terminal())
	assert.True(t, StatusFailed.Terminal())
	for _, s := range []AgentStatus{StatusIdle, StatusFollowing, StatusBlocked, StatusReplanning} {
		assert.False(t, s.Terminal(), s)
	}
}

func TestStrategiesOrder(t *testing.T) {
	want := []Strategy{
		StrategyBFS,
		StrategyUniformCost,
		StrategyAStar,
		StrategyHillClimb,
		StrategyAnnealing,
	}
	assert.Equal(t, want, Strategies())
}
