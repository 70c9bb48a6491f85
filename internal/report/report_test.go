package report

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierlab/gridcourier/pkg/types"
)

func sampleReport() Report {
	return Report{
		Map: MapInfo{Name: "small", Width: 10, Height: 10},
		Request: RequestInfo{
			Start:        types.Position{X: 0, Y: 0},
			Goal:         types.Position{X: 9, Y: 7},
			Heuristic:    "manhattan",
			Connectivity: "4-connected",
		},
		Results: []StrategyReport{
			{Strategy: "astar", Success: true, Cost: 18, Steps: 16, NodesExpanded: 54, PlanningMS: 0.3},
			{Strategy: "hill_climbing", Success: false, Error: "no path found"},
		},
		Cache: &CacheReport{Hits: 3, Misses: 5, StaleDrops: 1},
		Agent: &AgentReport{Status: "arrived", Steps: 16, Replans: 1, FinalTime: 17, Events: 20},
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment_results.json")
	m := NewManager(path)

	require.NoError(t, m.Write(sampleReport()))

	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, got.SchemaVer)
	assert.False(t, got.GeneratedAt.IsZero())
	assert.Equal(t, "small", got.Map.Name)
	require.Len(t, got.Results, 2)
	assert.Equal(t, 18, got.Results[0].Cost)
	assert.Equal(t, "no path found", got.Results[1].Error)
	assert.Equal(t, uint64(1), got.Cache.StaleDrops)
	assert.Equal(t, "arrived", got.Agent.Status)
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	require.NoError(t, NewManager(path).Write(sampleReport()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "report.json", entries[0].Name())
}

func TestWriteReplacesExistingReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	m := NewManager(path)

	first := sampleReport()
	require.NoError(t, m.Write(first))

	second := sampleReport()
	second.Map.Name = "medium"
	require.NoError(t, m.Write(second))

	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "medium", got.Map.Name)
}

func TestLoadCorruptedReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewManager(path).Load()
	assert.ErrorIs(t, err, ErrCorruptedReport)
}

func TestLoadIncompatibleVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version": 99}`), 0644))

	_, err := NewManager(path).Load()
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
	assert.Equal(t, fmt.Sprintf("%s: got 99, want %d", ErrIncompatibleVersion, schemaVersion), err.Error())
}
