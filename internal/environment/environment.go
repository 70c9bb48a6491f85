// ============================================================================
// Grid Environment - static terrain plus time-indexed moving obstacles
// ============================================================================
//
// Package: internal/environment
// Purpose: Answers passability and cost queries for any (position, time).
//
// Model:
//   - A bounded rectangular grid of terrain cells. Terrain is immutable once
//     the scenario is built; every traversable cell has cost >= 1 and
//     Building cells are impassable.
//   - An ordered set of obstacle schedules. Each schedule is a deterministic
//     cyclic sequence of positions: the obstacle occupies
//     Positions[t mod len] at time t, so prediction is a pure function of
//     (position, time) and planning and execution share one source of truth.
//   - A monotonically increasing version counter. Any schedule mutation
//     (obstacle injection) bumps the version, which invalidates cached plans
//     computed against older versions.
//
// Concurrency:
//   Read-mostly. Multiple planning calls may read concurrently under RLock;
//   InjectObstacle takes the write lock so the version bump and the schedule
//   update are observed atomically - readers see either the old or the new
//   state, never a torn one.
//
// ============================================================================

package environment

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/courierlab/gridcourier/pkg/types"
)

// ObstacleSchedule is a moving obstacle's deterministic position sequence.
// The obstacle occupies Positions[t mod len(Positions)] at time t.
type ObstacleSchedule struct {
	ID        string           `json:"id" yaml:"id"`
	Name      string           `json:"name" yaml:"name"`
	Positions []types.Position `json:"positions" yaml:"positions"`
}

// At returns the position occupied at time t. ok is false for an empty
// schedule, which never blocks anything.
func (s ObstacleSchedule) At(t int64) (types.Position, bool) {
	n := len(s.Positions)
	if n == 0 {
		return types.Position{}, false
	}
	idx := int(t % int64(n))
	if idx < 0 {
		idx += n
	}
	return s.Positions[idx], true
}

// Occupancy is one entry of a blocking forecast.
type Occupancy struct {
	T       int64
	Blocked bool
}

// Environment is the shared, versioned world model.
type Environment struct {
	mu        sync.RWMutex
	width     int
	height    int
	grid      []types.Terrain // row-major, grid[y*width+x]
	schedules []ObstacleSchedule
	version   uint64
	logger    *slog.Logger
}

// New creates an all-Road environment of the given dimensions.
// Non-positive dimensions are a construction error, not a panic.
func New(width, height int) (*Environment, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Environment{
		width:   width,
		height:  height,
		grid:    make([]types.Terrain, width*height),
		version: 1,
		logger:  slog.With("component", "environment"),
	}, nil
}

// Width returns the grid width.
func (e *Environment) Width() int { return e.width }

// Height returns the grid height.
func (e *Environment) Height() int { return e.height }

// InBounds reports whether pos lies inside the grid.
func (e *Environment) InBounds(pos types.Position) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < e.width && pos.Y < e.height
}

// SetTerrain assigns a terrain type to a single cell. Build-time only; the
// terrain layer is immutable once planning starts.
func (e *Environment) SetTerrain(pos types.Position, terrain types.Terrain) error {
	if !e.InBounds(pos) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}
	e.grid[pos.Y*e.width+pos.X] = terrain
	return nil
}

// SetTerrainRegion assigns a terrain type to the inclusive rectangle
// (x1,y1)-(x2,y2), clipping against the grid bounds.
func (e *Environment) SetTerrainRegion(x1, y1, x2, y2 int, terrain types.Terrain) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			pos := types.Position{X: x, Y: y}
			if e.InBounds(pos) {
				e.grid[y*e.width+x] = terrain
			}
		}
	}
}

// Terrain returns the terrain at pos.
func (e *Environment) Terrain(pos types.Position) (types.Terrain, error) {
	if !e.InBounds(pos) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}
	return e.grid[pos.Y*e.width+pos.X], nil
}

// Cost returns the traversal cost of the cell at pos. Impassable terrain
// reports ErrImpassable; positions outside the grid report ErrOutOfBounds.
func (e *Environment) Cost(pos types.Position) (int, error) {
	terrain, err := e.Terrain(pos)
	if err != nil {
		return 0, err
	}
	cost, ok := terrain.Cost()
	if !ok {
		return 0, fmt.Errorf("%w: %s at %s", ErrImpassable, terrain, pos)
	}
	return cost, nil
}

// Passable reports whether the static terrain at pos can ever be entered.
// Out-of-bounds positions are not passable.
func (e *Environment) Passable(pos types.Position) bool {
	terrain, err := e.Terrain(pos)
	if err != nil {
		return false
	}
	_, ok := terrain.Cost()
	return ok
}

// IsBlocked reports whether pos cannot be occupied at time t: either the
// terrain is impassable, or some obstacle's schedule places it there at t.
// Out-of-bounds positions are blocked.
func (e *Environment) IsBlocked(pos types.Position, t int64) bool {
	if !e.Passable(pos) {
		return true
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.obstacleAtLocked(pos, t)
}

// obstacleAtLocked checks the schedules only. Caller holds at least RLock.
func (e *Environment) obstacleAtLocked(pos types.Position, t int64) bool {
	for _, s := range e.schedules {
		if occupied, ok := s.At(t); ok && occupied == pos {
			return true
		}
	}
	return false
}

// Predict returns the blocking forecast for pos over [tStart, tStart+horizon).
// Obstacles are deterministic, so the forecast is pure and repeatable for the
// same environment version.
func (e *Environment) Predict(pos types.Position, tStart int64, horizon int) []Occupancy {
	forecast := make([]Occupancy, 0, horizon)
	if !e.Passable(pos) {
		for i := 0; i < horizon; i++ {
			forecast = append(forecast, Occupancy{T: tStart + int64(i), Blocked: true})
		}
		return forecast
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for i := 0; i < horizon; i++ {
		t := tStart + int64(i)
		forecast = append(forecast, Occupancy{T: t, Blocked: e.obstacleAtLocked(pos, t)})
	}
	return forecast
}

// InjectObstacle adds a moving obstacle at runtime and bumps the environment
// version. The returned ID identifies the schedule (a fresh UUID when the
// caller did not set one). The version increment happens under the same write
// lock as the schedule update.
func (e *Environment) InjectObstacle(schedule ObstacleSchedule) string {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	e.mu.Lock()
	e.schedules = append(e.schedules, schedule)
	e.version++
	version := e.version
	e.mu.Unlock()

	e.logger.Info("obstacle injected",
		"id", schedule.ID,
		"name", schedule.Name,
		"waypoints", len(schedule.Positions),
		"version", version)
	return schedule.ID
}

// Version returns the current environment version. It strictly increases with
// every schedule mutation.
func (e *Environment) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

// Schedules returns a copy of the current obstacle schedules.
func (e *Environment) Schedules() []ObstacleSchedule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]ObstacleSchedule, len(e.schedules))
	copy(out, e.schedules)
	return out
}
