// Package types defines the core domain model shared across the gridcourier
// planning and execution engine.
package types

import (
	"fmt"
	"time"
)

// Position is an integer coordinate on the grid.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Less imposes a total order on positions (row-major) for deterministic
// tie-breaking across strategies.
func (p Position) Less(other Position) bool {
	if p.Y != other.Y {
		return p.Y < other.Y
	}
	return p.X < other.X
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Terrain classifies a static grid cell.
type Terrain int

const (
	Road Terrain = iota
	Grass
	Water
	Mountain
	Building // impassable
)

// Cost returns the traversal cost of the terrain, or (0, false) when the
// terrain is impassable. Traversable costs are always >= 1.
func (t Terrain) Cost() (int, bool) {
	switch t {
	case Road:
		return 1, true
	case Grass:
		return 2, true
	case Water:
		return 3, true
	case Mountain:
		return 5, true
	default:
		return 0, false
	}
}

func (t Terrain) String() string {
	switch t {
	case Road:
		return "road"
	case Grass:
		return "grass"
	case Water:
		return "water"
	case Mountain:
		return "mountain"
	case Building:
		return "building"
	default:
		return "unknown"
	}
}

// Symbol returns the single-character map symbol used by the ASCII renderer.
func (t Terrain) Symbol() byte {
	switch t {
	case Road:
		return '.'
	case Grass:
		return 'g'
	case Water:
		return '~'
	case Mountain:
		return '^'
	case Building:
		return '#'
	default:
		return '?'
	}
}

// Connectivity selects the movement model: orthogonal neighbors only, or
// orthogonal plus diagonal.
type Connectivity int

const (
	Conn4 Connectivity = iota
	Conn8
)

func (c Connectivity) String() string {
	if c == Conn8 {
		return "8-connected"
	}
	return "4-connected"
}

// Strategy identifies one of the planning algorithms.
type Strategy string

const (
	StrategyBFS         Strategy = "bfs"
	StrategyUniformCost Strategy = "uniform_cost"
	StrategyAStar       Strategy = "astar"
	StrategyHillClimb   Strategy = "hill_climbing"
	StrategyAnnealing   Strategy = "simulated_annealing"
)

// Strategies lists every planner variant in the order results are reported.
func Strategies() []Strategy {
	return []Strategy{
		StrategyBFS,
		StrategyUniformCost,
		StrategyAStar,
		StrategyHillClimb,
		StrategyAnnealing,
	}
}

// Heuristic identifies the cost-to-goal estimate used by informed strategies.
type Heuristic string

const (
	HeuristicNone      Heuristic = ""
	HeuristicManhattan Heuristic = "manhattan"
	HeuristicEuclidean Heuristic = "euclidean"
	HeuristicDiagonal  Heuristic = "diagonal"
)

// PlanRequest is the full identity of a planning call. It is comparable and
// doubles as the path-cache key.
type PlanRequest struct {
	Start        Position
	Goal         Position
	Strategy     Strategy
	Heuristic    Heuristic
	Connectivity Connectivity
	TimeOffset   int64
}

// PathStats carries the comparison metadata attached to every planner result.
type PathStats struct {
	NodesExpanded int           `json:"nodes_expanded"`
	PlanningTime  time.Duration `json:"planning_time"`
}

// Path is an ordered sequence of adjacent positions from start to goal,
// together with its cumulative terrain cost and search metadata.
type Path struct {
	Steps []Position `json:"steps"`
	Cost  int        `json:"cost"`
	Stats PathStats  `json:"stats"`
}

// Len returns the number of cells on the path, including the start.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Steps)
}

// Edges returns the number of moves on the path.
func (p *Path) Edges() int {
	n := p.Len()
	if n == 0 {
		return 0
	}
	return n - 1
}

// Clone returns an independent copy so cached paths cannot be mutated by
// callers.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	steps := make([]Position, len(p.Steps))
	copy(steps, p.Steps)
	return &Path{Steps: steps, Cost: p.Cost, Stats: p.Stats}
}

// AgentStatus is the delivery agent's state-machine state.
type AgentStatus int

const (
	StatusIdle AgentStatus = iota
	StatusFollowing
	StatusBlocked
	StatusReplanning
	StatusArrived
	StatusFailed
)

func (s AgentStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFollowing:
		return "following"
	case StatusBlocked:
		return "blocked"
	case StatusReplanning:
		return "replanning"
	case StatusArrived:
		return "arrived"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status ends the simulation.
func (s AgentStatus) Terminal() bool {
	return s == StatusArrived || s == StatusFailed
}

// TriggerKind classifies why the agent emitted an event.
type TriggerKind string

const (
	TriggerInitialPlan    TriggerKind = "initial_plan"
	TriggerMove           TriggerKind = "move"
	TriggerBlocked        TriggerKind = "blocked"
	TriggerReplan         TriggerKind = "replan"
	TriggerReplanFailed   TriggerKind = "replan_failed"
	TriggerArrived        TriggerKind = "arrived"
	TriggerBudgetExceeded TriggerKind = "budget_exceeded"
	TriggerFuelExhausted  TriggerKind = "fuel_exhausted"
	TriggerPickup         TriggerKind = "pickup"
	TriggerDelivery       TriggerKind = "delivery"
)

// Event is the structured record emitted on every agent transition. It is the
// externally consumed artifact for statistics and visualization.
type Event struct {
	ID       string      `json:"id"`
	Tick     int64       `json:"tick"`
	Trigger  TriggerKind `json:"trigger"`
	Position Position    `json:"position"`
	Strategy Strategy    `json:"strategy,omitempty"`
	Outcome  string      `json:"outcome,omitempty"`
	PathCost int         `json:"path_cost,omitempty"`
	Detail   string      `json:"detail,omitempty"`
}

// DeliveryTask is a package to pick up and drop off. Higher priority tasks
// are served first.
type DeliveryTask struct {
	PackageID string   `json:"package_id" yaml:"package_id"`
	Pickup    Position `json:"pickup" yaml:"pickup"`
	Dropoff   Position `json:"dropoff" yaml:"dropoff"`
	Priority  int      `json:"priority" yaml:"priority"`
}

// AgentState is the externally visible snapshot of the agent after a tick.
type AgentState struct {
	Position   Position    `json:"position"`
	Time       int64       `json:"time"`
	Status     AgentStatus `json:"status"`
	PathIndex  int         `json:"path_index"`
	Replans    int         `json:"replans"`
	Steps      int         `json:"steps"`
	Fuel       float64     `json:"fuel"`
	FailReason string      `json:"fail_reason,omitempty"`
}
