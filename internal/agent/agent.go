// ============================================================================
// Delivery Agent - stepwise plan execution with replanning
// ============================================================================
//
// Package: internal/agent
// Purpose: Drives execution of a planned route one tick at a time, detects
//          when the next step has been invalidated by the obstacle schedule,
//          and re-invokes the planner (through the path cache) anchored at
//          the agent's current position and time.
//
// State machine:
//
//   Idle -> Following -> {Following, Blocked} -> Replanning
//        -> {Following, Failed} -> Arrived
//
//   Idle        entry state; requests the initial path via the cache.
//   Following   one move per tick, re-validating the next cell against the
//               live obstacle state at its arrival time.
//   Blocked     next planned step newly blocked; transitions immediately to
//               Replanning within the same tick's accounting.
//   Replanning  plans from (current position, current time), never from the
//               original start. Below the replan budget a failure retries
//               next tick; at the budget the agent fails terminally.
//   Arrived     terminal success.
//   Failed      terminal failure: replan limit, step budget, or fuel.
//
// Time model: a tick either moves the agent one cell or waits in place
// (blocked/replanning ticks); both advance the clock by one, so plan arrival
// times always line up with the obstacle schedule.
//
// The scheduling model is single-threaded cooperative: a planning call fully
// completes before the next tick proceeds. Every transition is recorded as a
// structured event for external consumers.
//
// ============================================================================

package agent

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/courierlab/gridcourier/internal/cache"
	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/internal/eventlog"
	"github.com/courierlab/gridcourier/internal/planner"
	"github.com/courierlab/gridcourier/pkg/types"
)

// Config constructs an agent run.
type Config struct {
	Start        types.Position
	Goal         types.Position
	Strategy     types.Strategy
	Heuristic    types.Heuristic
	Connectivity types.Connectivity
	// StepBudget bounds moves; exceeded means Failed. Zero means default.
	StepBudget int
	// ReplanBudget bounds planner re-invocations. Zero means default.
	ReplanBudget int
	// Fuel, when positive, is consumed by terrain cost per move; running out
	// means Failed. Zero disables fuel accounting.
	Fuel float64
	// Fallback, when set, is tried after the primary strategy fails a
	// planning call. Meant to back a local-search primary with a complete
	// strategy.
	Fallback types.Strategy
	// StartTime offsets the agent clock, for scenarios that begin mid-schedule.
	StartTime int64
}

// Defaults for unset Config fields.
const (
	DefaultStepBudget   = 1000
	DefaultReplanBudget = 10
)

// Agent executes one delivery route.
type Agent struct {
	env      *environment.Environment
	cache    *cache.Cache
	recorder *eventlog.Recorder
	cfg      Config
	logger   *slog.Logger

	pos        types.Position
	now        int64
	status     types.AgentStatus
	path       *types.Path
	pathIndex  int
	replans    int
	steps      int
	fuel       float64
	failReason string
}

// New creates an agent over a shared environment and path cache. The recorder
// receives one event per transition; pass a fresh one per run.
func New(env *environment.Environment, pathCache *cache.Cache, recorder *eventlog.Recorder, cfg Config) (*Agent, error) {
	if !env.InBounds(cfg.Start) || !env.InBounds(cfg.Goal) {
		return nil, fmt.Errorf("%w: start %s goal %s", environment.ErrOutOfBounds, cfg.Start, cfg.Goal)
	}
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = DefaultStepBudget
	}
	if cfg.ReplanBudget <= 0 {
		cfg.ReplanBudget = DefaultReplanBudget
	}
	if cfg.Strategy == "" {
		cfg.Strategy = types.StrategyAStar
	}
	return &Agent{
		env:      env,
		cache:    pathCache,
		recorder: recorder,
		cfg:      cfg,
		logger:   slog.With("component", "agent"),
		pos:      cfg.Start,
		now:      cfg.StartTime,
		status:   types.StatusIdle,
		fuel:     cfg.Fuel,
	}, nil
}

// State returns the externally visible snapshot.
func (a *Agent) State() types.AgentState {
	return types.AgentState{
		Position:   a.pos,
		Time:       a.now,
		Status:     a.status,
		PathIndex:  a.pathIndex,
		Replans:    a.replans,
		Steps:      a.steps,
		Fuel:       a.fuel,
		FailReason: a.failReason,
	}
}

// Path returns the active plan, or nil.
func (a *Agent) Path() *types.Path { return a.path }

// Tick advances the simulation by one step and returns the resulting state
// plus the events emitted during this tick. Calling Tick in a terminal state
// returns ErrTerminal.
func (a *Agent) Tick() (types.AgentState, []types.Event, error) {
	if a.status.Terminal() {
		return a.State(), nil, ErrTerminal
	}

	before := a.recorder.Len()
	switch a.status {
	case types.StatusIdle:
		a.tickIdle()
	case types.StatusFollowing:
		a.tickFollowing()
	case types.StatusBlocked, types.StatusReplanning:
		// Blocked collapses into Replanning on the same tick; a lingering
		// Replanning state means the previous attempt failed and is retried.
		a.waitAndReplan(types.TriggerReplan)
	}

	emitted := a.recorder.Events()[before:]
	return a.State(), emitted, nil
}

// Run ticks until a terminal state and returns it.
func (a *Agent) Run() (types.AgentState, error) {
	for !a.status.Terminal() {
		if _, _, err := a.Tick(); err != nil && !errors.Is(err, ErrTerminal) {
			return a.State(), err
		}
	}
	if a.status == types.StatusFailed {
		return a.State(), failError(a.failReason)
	}
	return a.State(), nil
}

// tickIdle requests the initial plan anchored at the starting position.
func (a *Agent) tickIdle() {
	if a.arrivedCheck() {
		return
	}
	a.plan(types.TriggerInitialPlan)
}

// tickFollowing validates and executes the next planned move.
func (a *Agent) tickFollowing() {
	if a.arrivedCheck() {
		return
	}
	if a.path == nil || a.pathIndex >= a.path.Len() {
		// Plan ran out before the goal; treat as a blocked plan.
		a.waitAndReplan(types.TriggerReplan)
		return
	}

	next := a.path.Steps[a.pathIndex]
	arrival := a.now + 1
	if a.env.IsBlocked(next, arrival) {
		// An obstacle not predicted at planning time, or a newly injected
		// one. Blocked -> Replanning -> {Following, Failed} inside this tick.
		a.status = types.StatusBlocked
		a.emit(types.Event{
			Trigger:  types.TriggerBlocked,
			Position: a.pos,
			Detail:   fmt.Sprintf("next cell %s blocked at t=%d", next, arrival),
		})
		a.waitAndReplan(types.TriggerReplan)
		return
	}

	if a.steps >= a.cfg.StepBudget {
		a.fail(ErrStepBudgetExceeded, types.TriggerBudgetExceeded)
		return
	}

	cost, err := a.env.Cost(next)
	if err != nil {
		// Planned into impassable terrain; the plan is invalid.
		a.waitAndReplan(types.TriggerReplan)
		return
	}
	if a.cfg.Fuel > 0 {
		if a.fuel < float64(cost) {
			a.fail(ErrFuelExhausted, types.TriggerFuelExhausted)
			return
		}
		a.fuel -= float64(cost)
	}

	a.pos = next
	a.now = arrival
	a.steps++
	a.pathIndex++
	a.emit(types.Event{
		Trigger:  types.TriggerMove,
		Position: a.pos,
		Strategy: a.cfg.Strategy,
	})
	a.arrivedCheck()
}

// waitAndReplan consumes the tick waiting in place, then re-plans anchored at
// the current position and the post-wait time.
func (a *Agent) waitAndReplan(trigger types.TriggerKind) {
	a.status = types.StatusReplanning
	a.now++ // the tick is spent waiting, keeping plan times aligned
	if a.replans >= a.cfg.ReplanBudget {
		a.fail(ErrReplanLimitExceeded, types.TriggerReplanFailed)
		return
	}
	a.replans++
	a.plan(trigger)
}

// plan invokes the planner through the cache, trying the fallback strategy
// when the primary fails. On success the agent follows the new path from its
// current cell.
func (a *Agent) plan(trigger types.TriggerKind) {
	path, strategy, err := a.planWithFallback()
	if err != nil {
		a.emit(types.Event{
			Trigger:  failureTrigger(trigger),
			Position: a.pos,
			Strategy: strategy,
			Outcome:  "no_path",
			Detail:   err.Error(),
		})
		a.logger.Warn("planning failed",
			"trigger", trigger,
			"pos", a.pos,
			"time", a.now,
			"replans", a.replans,
			"err", err)
		if a.status == types.StatusIdle {
			// Initial planning failures retry through the replanning budget.
			a.status = types.StatusReplanning
			if a.replans >= a.cfg.ReplanBudget {
				a.fail(ErrReplanLimitExceeded, types.TriggerReplanFailed)
				return
			}
			a.replans++
		}
		return
	}

	a.path = path
	a.pathIndex = 1 // Steps[0] is the current cell
	a.status = types.StatusFollowing
	a.emit(types.Event{
		Trigger:  trigger,
		Position: a.pos,
		Strategy: strategy,
		Outcome:  "ok",
		PathCost: path.Cost,
	})
	a.logger.Info("plan adopted",
		"trigger", trigger,
		"strategy", strategy,
		"cost", path.Cost,
		"len", path.Len(),
		"time", a.now)
}

func (a *Agent) planWithFallback() (*types.Path, types.Strategy, error) {
	req := types.PlanRequest{
		Start:        a.pos,
		Goal:         a.cfg.Goal,
		Strategy:     a.cfg.Strategy,
		Heuristic:    a.cfg.Heuristic,
		Connectivity: a.cfg.Connectivity,
		TimeOffset:   a.now,
	}
	path, err := a.cache.Get(a.env, req)
	if err == nil {
		return path, a.cfg.Strategy, nil
	}
	if a.cfg.Fallback == "" || a.cfg.Fallback == a.cfg.Strategy {
		return nil, a.cfg.Strategy, err
	}
	if !errors.Is(err, planner.ErrNoPathFound) {
		// Validation errors (bounds, heuristic pairing) are not recoverable
		// by switching strategy.
		return nil, a.cfg.Strategy, err
	}

	req.Strategy = a.cfg.Fallback
	path, fbErr := a.cache.Get(a.env, req)
	if fbErr != nil {
		return nil, a.cfg.Fallback, fmt.Errorf("primary: %v; fallback: %w", err, fbErr)
	}
	a.logger.Info("fallback strategy succeeded",
		"primary", a.cfg.Strategy,
		"fallback", a.cfg.Fallback)
	return path, a.cfg.Fallback, nil
}

func (a *Agent) arrivedCheck() bool {
	if a.pos != a.cfg.Goal {
		return false
	}
	a.status = types.StatusArrived
	a.emit(types.Event{
		Trigger:  types.TriggerArrived,
		Position: a.pos,
		Strategy: a.cfg.Strategy,
		Outcome:  "ok",
	})
	a.logger.Info("arrived", "pos", a.pos, "time", a.now, "steps", a.steps, "replans", a.replans)
	return true
}

func (a *Agent) fail(reason error, trigger types.TriggerKind) {
	a.status = types.StatusFailed
	a.failReason = reason.Error()
	a.emit(types.Event{
		Trigger:  trigger,
		Position: a.pos,
		Outcome:  "failed",
		Detail:   reason.Error(),
	})
	a.logger.Warn("agent failed", "reason", reason, "pos", a.pos, "time", a.now, "steps", a.steps)
}

func (a *Agent) emit(event types.Event) {
	event.Tick = a.now
	a.recorder.Record(event)
}

func failureTrigger(trigger types.TriggerKind) types.TriggerKind {
	if trigger == types.TriggerInitialPlan {
		return trigger
	}
	return types.TriggerReplanFailed
}

func failError(reason string) error {
	switch reason {
	case ErrReplanLimitExceeded.Error():
		return ErrReplanLimitExceeded
	case ErrStepBudgetExceeded.Error():
		return ErrStepBudgetExceeded
	case ErrFuelExhausted.Error():
		return ErrFuelExhausted
	default:
		return fmt.Errorf("agent failed: %s", reason)
	}
}
