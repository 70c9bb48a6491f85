package main

// Scripted demonstration on the 12x12 demo map: compares every strategy on
// the same problem, then runs the delivery agent with ASCII frames, injecting
// an extra obstacle mid-run to force replanning.

import (
	"fmt"
	"log"
	"strings"

	"github.com/courierlab/gridcourier/internal/agent"
	"github.com/courierlab/gridcourier/internal/cache"
	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/internal/eventlog"
	"github.com/courierlab/gridcourier/internal/planner"
	"github.com/courierlab/gridcourier/pkg/types"
)

func main() {
	env := environment.Demo()
	start := types.Position{X: 0, Y: 2}
	goal := types.Position{X: 11, Y: 11}

	p := planner.New(planner.Config{Seed: 42})

	banner("Strategy comparison")
	base := types.PlanRequest{Start: start, Goal: goal, Heuristic: types.HeuristicManhattan}
	results, err := p.Compare(env, base, types.Strategies())
	if err != nil {
		log.Fatalf("comparison failed: %v", err)
	}
	for _, r := range results {
		if !r.Success {
			fmt.Printf("  %-22s failed: %s\n", r.Strategy, r.Err)
			continue
		}
		fmt.Printf("  %-22s cost=%-3d steps=%-3d expanded=%-5d %s\n",
			r.Strategy, r.Path.Cost, r.Path.Edges(), r.Path.Stats.NodesExpanded, r.Elapsed)
	}

	banner("Delivery run with replanning")
	pathCache := cache.New(64, p.Plan)
	recorder := eventlog.NewRecorder()
	courier, err := agent.New(env, pathCache, recorder, agent.Config{
		Start:    start,
		Goal:     goal,
		Strategy: types.StrategyAStar,
	})
	if err != nil {
		log.Fatalf("failed to create agent: %v", err)
	}

	injected := false
	for {
		state, events, err := courier.Tick()
		if err != nil {
			break
		}
		for _, e := range events {
			fmt.Printf("  [t=%d] %s at %s\n", e.Tick, e.Trigger, e.Position)
		}
		if state.Time%4 == 0 || state.Status.Terminal() {
			fmt.Printf("t=%d status=%s\n%s\n", state.Time, state.Status, env.Render(state.Position, state.Time))
		}
		// Drop a roadblock on the agent's remaining route to trigger a replan.
		if !injected && state.Steps == 5 {
			remaining := courier.Path().Steps
			if state.PathIndex < len(remaining) {
				block := remaining[len(remaining)-3]
				env.InjectObstacle(environment.ObstacleSchedule{
					Name:      "roadblock",
					Positions: []types.Position{block},
				})
				fmt.Printf("  >> roadblock injected at %s\n", block)
				injected = true
			}
		}
		if state.Status.Terminal() {
			break
		}
	}

	final := courier.State()
	stats := pathCache.Snapshot()
	banner("Summary")
	fmt.Printf("  status=%s steps=%d replans=%d time=%d\n",
		final.Status, final.Steps, final.Replans, final.Time)
	fmt.Printf("  cache: hits=%d misses=%d stale_drops=%d\n",
		stats.Hits, stats.Misses, stats.StaleDrops)
	fmt.Printf("  events recorded: %d (replans: %d, blocked: %d)\n",
		recorder.Len(),
		recorder.CountTrigger(types.TriggerReplan),
		recorder.CountTrigger(types.TriggerBlocked))
}

func banner(title string) {
	fmt.Printf("\n%s\n %s\n%s\n", strings.Repeat("=", 60), title, strings.Repeat("=", 60))
}
