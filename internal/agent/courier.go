package agent

// Courier runs a multi-package delivery round on top of the single-route
// agent: pick the highest-priority outstanding package, drive to its pickup,
// then to its dropoff, and repeat until the task list is served or a leg
// fails. Task state is tracked pending -> carrying -> completed.

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/courierlab/gridcourier/internal/cache"
	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/internal/eventlog"
	"github.com/courierlab/gridcourier/pkg/types"
)

// CourierStats summarizes a delivery round for reporting.
type CourierStats struct {
	Deliveries int     `json:"deliveries_completed"`
	Steps      int     `json:"simulation_steps"`
	Replans    int     `json:"replanning_events"`
	FuelUsed   float64 `json:"total_fuel_consumed"`
	Distance   int     `json:"total_distance_traveled"`
}

// Courier coordinates delivery tasks over a shared environment and cache.
type Courier struct {
	env      *environment.Environment
	cache    *cache.Cache
	recorder *eventlog.Recorder
	base     Config
	logger   *slog.Logger

	pending   map[string]types.DeliveryTask
	carrying  map[string]types.DeliveryTask
	completed map[string]types.DeliveryTask
}

// NewCourier creates a courier starting at base.Start. base.Goal is ignored;
// each leg's goal comes from the task list.
func NewCourier(env *environment.Environment, pathCache *cache.Cache, recorder *eventlog.Recorder, base Config, tasks []types.DeliveryTask) *Courier {
	pending := make(map[string]types.DeliveryTask, len(tasks))
	for _, task := range tasks {
		pending[task.PackageID] = task
	}
	return &Courier{
		env:       env,
		cache:     pathCache,
		recorder:  recorder,
		base:      base,
		logger:    slog.With("component", "courier"),
		pending:   pending,
		carrying:  make(map[string]types.DeliveryTask),
		completed: make(map[string]types.DeliveryTask),
	}
}

// Run serves tasks until all are delivered or a leg fails terminally.
// It returns the stats either way; err reports the first leg failure.
func (c *Courier) Run() (CourierStats, error) {
	stats := CourierStats{}
	pos := c.base.Start
	now := c.base.StartTime
	fuel := c.base.Fuel

	for len(c.pending) > 0 || len(c.carrying) > 0 {
		task, toPickup := c.nextLeg()
		goal := task.Dropoff
		if toPickup {
			goal = task.Pickup
		}

		cfg := c.base
		cfg.Start = pos
		cfg.Goal = goal
		cfg.StartTime = now
		cfg.Fuel = fuel

		leg, err := New(c.env, c.cache, c.recorder, cfg)
		if err != nil {
			return stats, fmt.Errorf("leg for %s: %w", task.PackageID, err)
		}
		final, runErr := leg.Run()

		stats.Steps += final.Steps
		stats.Replans += final.Replans
		stats.Distance += final.Steps
		if c.base.Fuel > 0 {
			stats.FuelUsed += fuel - final.Fuel
			fuel = final.Fuel
		}
		pos = final.Position
		now = final.Time

		if runErr != nil {
			return stats, fmt.Errorf("leg for %s: %w", task.PackageID, runErr)
		}

		if toPickup {
			delete(c.pending, task.PackageID)
			c.carrying[task.PackageID] = task
			c.recorder.Record(types.Event{
				Tick:     now,
				Trigger:  types.TriggerPickup,
				Position: pos,
				Detail:   task.PackageID,
			})
			c.logger.Info("package picked up", "package", task.PackageID, "pos", pos, "time", now)
		} else {
			delete(c.carrying, task.PackageID)
			c.completed[task.PackageID] = task
			stats.Deliveries++
			c.recorder.Record(types.Event{
				Tick:     now,
				Trigger:  types.TriggerDelivery,
				Position: pos,
				Detail:   task.PackageID,
			})
			c.logger.Info("package delivered", "package", task.PackageID, "pos", pos, "time", now)
		}
	}
	return stats, nil
}

// nextLeg picks the task to serve next: anything carried is dropped off
// before new pickups, then highest priority, with package ID as the
// deterministic tie-break.
func (c *Courier) nextLeg() (types.DeliveryTask, bool) {
	if len(c.carrying) > 0 {
		return pickTask(c.carrying), false
	}
	return pickTask(c.pending), true
}

func pickTask(tasks map[string]types.DeliveryTask) types.DeliveryTask {
	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := tasks[ids[i]], tasks[ids[j]]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.PackageID < b.PackageID
	})
	return tasks[ids[0]]
}
