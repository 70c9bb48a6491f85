package report

// ============================================================================
// Responsibilities:
// 1. Serializes experiment results (per-strategy comparison, cache counters,
//    agent run summary) to a JSON report file
// 2. Uses atomic writes (temp file + rename) so a crash never leaves a
//    half-written report
// 3. Validates schema version on load
// ============================================================================

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/courierlab/gridcourier/pkg/types"
)

const schemaVersion = 1

var (
	ErrCorruptedReport     = errors.New("report file is corrupted")
	ErrIncompatibleVersion = errors.New("report schema version is incompatible")
)

// MapInfo identifies the scenario the experiment ran on.
type MapInfo struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// RequestInfo records the planning request shared by every strategy.
type RequestInfo struct {
	Start        types.Position `json:"start"`
	Goal         types.Position `json:"goal"`
	Heuristic    string         `json:"heuristic,omitempty"`
	Connectivity string         `json:"connectivity"`
	TimeOffset   int64          `json:"time_offset"`
}

// StrategyReport is one strategy's outcome in the comparison.
type StrategyReport struct {
	Strategy      string  `json:"strategy"`
	Success       bool    `json:"success"`
	Cost          int     `json:"cost,omitempty"`
	Steps         int     `json:"steps,omitempty"`
	NodesExpanded int     `json:"nodes_expanded"`
	PlanningMS    float64 `json:"planning_time_ms"`
	Error         string  `json:"error,omitempty"`
}

// CacheReport mirrors the path cache counters at report time.
type CacheReport struct {
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Evictions  uint64 `json:"evictions"`
	StaleDrops uint64 `json:"stale_drops"`
}

// AgentReport summarizes a simulation run, when one was part of the
// experiment.
type AgentReport struct {
	Status     string `json:"status"`
	Steps      int    `json:"steps"`
	Replans    int    `json:"replans"`
	FinalTime  int64  `json:"final_time"`
	Events     int    `json:"events"`
	FailReason string `json:"fail_reason,omitempty"`
}

// Report is the full experiment artifact.
type Report struct {
	SchemaVer   int              `json:"schema_version"`
	GeneratedAt time.Time        `json:"generated_at"`
	Map         MapInfo          `json:"map"`
	Request     RequestInfo      `json:"request"`
	Results     []StrategyReport `json:"results"`
	Cache       *CacheReport     `json:"cache,omitempty"`
	Agent       *AgentReport     `json:"agent,omitempty"`
}

// Manager owns one report file.
type Manager struct {
	path string
	mu   sync.Mutex
}

// NewManager creates a manager for the given path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Write atomically persists the report: the JSON is written to a temp file
// and renamed over the target, so readers only ever see complete content.
func (m *Manager) Write(r Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.SchemaVer = schemaVersion
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}

	jsonBytes, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write temp report: %w", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename report: %w", err)
	}
	return nil
}

// Load reads a previously written report, validating the schema version.
func (m *Manager) Load() (Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var r Report
	jsonBytes, err := os.ReadFile(m.path)
	if err != nil {
		return r, fmt.Errorf("failed to read report: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, &r); err != nil {
		return r, fmt.Errorf("%w: %v", ErrCorruptedReport, err)
	}
	if r.SchemaVer != schemaVersion {
		return r, fmt.Errorf("%w: got %d, want %d", ErrIncompatibleVersion, r.SchemaVer, schemaVersion)
	}
	return r, nil
}
