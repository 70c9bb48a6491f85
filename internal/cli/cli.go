// ============================================================================
// GridCourier CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Provides user-friendly command line interface based on Cobra framework
//
// Command Structure:
//   gridcourier                    # Root command
//   ├── compare                    # Run every strategy on one problem
//   │   └── --map, --start, --goal, --heuristic, --diagonal, --time, --output
//   ├── simulate                   # Run the delivery agent tick by tick
//   │   └── --map, --start, --goal, --strategy, --events, --render
//   ├── deliver                    # Run a multi-package delivery round
//   │   └── --map, --start, --tasks
//   ├── experiment                 # Comparison + simulation, JSON report
//   │   └── --map, --start, --goal, --output
//   ├── --config, -c               # YAML config file
//   ├── --version                  # Display version information
//   └── --help                     # Display help information
//
// Configuration Management:
//   Uses YAML format config file (default: configs/default.yaml)
//   Configuration items include:
//   - planner: expansion budgets, annealing schedule, random seed
//   - cache: path cache capacity
//   - agent: step/replan budgets, fuel, fallback strategy
//   - metrics: Prometheus monitoring configuration
//
// Map Selection:
//   --map accepts a builtin scenario name (small, medium, large, dynamic,
//   demo) or a path to a YAML map file describing terrain regions and
//   obstacle schedules.
//
// Metrics Service:
//   If enabled in config, starts HTTP service in separate goroutine:
//   - Default port: 9090
//   - Path: /metrics
//   - Format: Prometheus format
//
// ============================================================================

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/courierlab/gridcourier/internal/agent"
	"github.com/courierlab/gridcourier/internal/cache"
	"github.com/courierlab/gridcourier/internal/environment"
	"github.com/courierlab/gridcourier/internal/eventlog"
	"github.com/courierlab/gridcourier/internal/metrics"
	"github.com/courierlab/gridcourier/internal/planner"
	"github.com/courierlab/gridcourier/internal/report"
	"github.com/courierlab/gridcourier/pkg/types"
)

const defaultConfigPath = "configs/default.yaml"

// Config represents the complete engine configuration structure.
// Maps config file fields through YAML tags.
type Config struct {
	Planner struct {
		MaxExpansions  int     `yaml:"max_expansions"`
		MaxRestarts    int     `yaml:"max_restarts"`
		AnnealingSteps int     `yaml:"annealing_steps"`
		InitialTemp    float64 `yaml:"initial_temp"`
		Cooling        float64 `yaml:"cooling"`
		MinTemp        float64 `yaml:"min_temp"`
		Seed           int64   `yaml:"seed"`
	} `yaml:"planner"`

	Cache struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"cache"`

	Agent struct {
		StepBudget   int     `yaml:"step_budget"`
		ReplanBudget int     `yaml:"replan_budget"`
		Fuel         float64 `yaml:"fuel"`
		Fallback     string  `yaml:"fallback"`
	} `yaml:"agent"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`
}

var configFile string

func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gridcourier",
		Short: "GridCourier: route planning and delivery on dynamic city grids",
		Long: `GridCourier plans and executes delivery routes on weighted grids with
moving obstacles:
- Five planning strategies (bfs, uniform_cost, astar, hill_climbing,
  simulated_annealing)
- Versioned path cache with transparent invalidation
- Replanning delivery agent with structured event output
- Prometheus metrics`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigPath, "config file path")

	rootCmd.AddCommand(buildCompareCommand())
	rootCmd.AddCommand(buildSimulateCommand())
	rootCmd.AddCommand(buildDeliverCommand())
	rootCmd.AddCommand(buildExperimentCommand())

	return rootCmd
}

type problemFlags struct {
	mapName   string
	start     string
	goal      string
	heuristic string
	diagonal  bool
	timeOff   int64
}

func (f *problemFlags) register(cmd *cobra.Command, withGoal bool) {
	cmd.Flags().StringVarP(&f.mapName, "map", "m", "small", "builtin scenario (small, medium, large, dynamic, demo) or YAML map file")
	cmd.Flags().StringVar(&f.start, "start", "0,0", "start position as x,y")
	if withGoal {
		cmd.Flags().StringVar(&f.goal, "goal", "", "goal position as x,y")
		cmd.MarkFlagRequired("goal")
	}
	cmd.Flags().StringVar(&f.heuristic, "heuristic", "manhattan", "heuristic: manhattan, euclidean, diagonal")
	cmd.Flags().BoolVar(&f.diagonal, "diagonal", false, "allow diagonal movement (8-connected)")
	cmd.Flags().Int64Var(&f.timeOff, "time", 0, "time offset the plan starts at")
}

func (f *problemFlags) request() (types.PlanRequest, error) {
	start, err := parsePosition(f.start)
	if err != nil {
		return types.PlanRequest{}, fmt.Errorf("invalid --start: %w", err)
	}
	req := types.PlanRequest{
		Start:      start,
		Heuristic:  types.Heuristic(f.heuristic),
		TimeOffset: f.timeOff,
	}
	if f.goal != "" {
		goal, err := parsePosition(f.goal)
		if err != nil {
			return types.PlanRequest{}, fmt.Errorf("invalid --goal: %w", err)
		}
		req.Goal = goal
	}
	if f.diagonal {
		req.Connectivity = types.Conn8
	}
	return req, nil
}

func buildCompareCommand() *cobra.Command {
	flags := &problemFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every planning strategy on one problem",
		Long:  "Plan the same start/goal with all five strategies in parallel and print a comparison table. Use --output to also write a JSON report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(flags, output)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write a JSON report to this path")
	return cmd
}

func runCompare(flags *problemFlags, output string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	env, mapName, err := loadMap(flags.mapName)
	if err != nil {
		return err
	}
	base, err := flags.request()
	if err != nil {
		return err
	}

	p := planner.New(plannerConfig(cfg))
	results, err := p.Compare(env, base, types.Strategies())
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	printComparison(mapName, base, results)

	if output != "" {
		rep := buildReport(env, mapName, base, results)
		if err := report.NewManager(output).Write(rep); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", output)
	}
	return nil
}

func printComparison(mapName string, base types.PlanRequest, results []planner.StrategyResult) {
	fmt.Printf("\nMap: %s  %s -> %s  (%s, t=%d)\n\n",
		mapName, base.Start, base.Goal, base.Connectivity, base.TimeOffset)
	fmt.Printf("%-22s %-8s %8s %8s %10s %12s\n",
		"STRATEGY", "RESULT", "COST", "STEPS", "EXPANDED", "TIME")
	fmt.Println(strings.Repeat("-", 74))
	for _, r := range results {
		if !r.Success {
			fmt.Printf("%-22s %-8s %8s %8s %10s %12s  %s\n",
				r.Strategy, "fail", "-", "-", "-", r.Elapsed.Round(1000).String(), r.Err)
			continue
		}
		fmt.Printf("%-22s %-8s %8d %8d %10d %12s\n",
			r.Strategy, "ok", r.Path.Cost, r.Path.Edges(),
			r.Path.Stats.NodesExpanded, r.Elapsed.Round(1000).String())
	}
	fmt.Println()
}

func buildSimulateCommand() *cobra.Command {
	flags := &problemFlags{}
	var strategy, fallback, eventsPath string
	var render bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the delivery agent tick by tick",
		Long:  "Execute a planned route against live obstacle schedules, replanning when the route is invalidated. Use --events to persist the event stream as JSON lines, --render to print ASCII frames.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(flags, strategy, fallback, eventsPath, render)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "astar", "planning strategy")
	cmd.Flags().StringVar(&fallback, "fallback", "", "fallback strategy after a planning failure")
	cmd.Flags().StringVar(&eventsPath, "events", "", "write the event stream to this JSONL file")
	cmd.Flags().BoolVar(&render, "render", false, "print an ASCII frame after every tick")
	return cmd
}

func runSimulate(flags *problemFlags, strategy, fallback, eventsPath string, render bool) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	env, mapName, err := loadMap(flags.mapName)
	if err != nil {
		return err
	}
	base, err := flags.request()
	if err != nil {
		return err
	}

	collector := startMetrics(cfg)
	p := planner.New(plannerConfig(cfg))
	pathCache := cache.New(cfg.Cache.Capacity, p.Plan)
	if collector != nil {
		p.SetObserver(collector)
		pathCache.SetObserver(collector)
	}
	recorder := eventlog.NewRecorder()

	courier, err := agent.New(env, pathCache, recorder, agent.Config{
		Start:        base.Start,
		Goal:         base.Goal,
		Strategy:     types.Strategy(strategy),
		Heuristic:    base.Heuristic,
		Connectivity: base.Connectivity,
		StepBudget:   cfg.Agent.StepBudget,
		ReplanBudget: cfg.Agent.ReplanBudget,
		Fuel:         cfg.Agent.Fuel,
		Fallback:     types.Strategy(fallback),
		StartTime:    base.TimeOffset,
	})
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	fmt.Printf("Simulating %s on %s: %s -> %s\n", strategy, mapName, base.Start, base.Goal)

	var runErr error
	for {
		state, _, err := courier.Tick()
		if err != nil {
			break
		}
		if render {
			fmt.Printf("t=%d  status=%s  pos=%s\n%s\n", state.Time, state.Status, state.Position, env.Render(state.Position, state.Time))
		}
		if state.Status.Terminal() {
			if state.Status == types.StatusFailed {
				runErr = fmt.Errorf("agent failed: %s", state.FailReason)
			}
			break
		}
	}

	final := courier.State()
	if collector != nil {
		collector.SetAgentSteps(final.Steps)
		for i := 0; i < final.Replans; i++ {
			collector.RecordReplan()
		}
	}
	fmt.Printf("Result: %s  steps=%d  replans=%d  t=%d\n",
		final.Status, final.Steps, final.Replans, final.Time)

	if eventsPath != "" {
		if err := writeEvents(eventsPath, recorder.Events()); err != nil {
			return err
		}
		fmt.Printf("Events written to %s (%d events)\n", eventsPath, recorder.Len())
	}
	return runErr
}

func buildDeliverCommand() *cobra.Command {
	flags := &problemFlags{}
	var strategy, tasksPath string

	cmd := &cobra.Command{
		Use:   "deliver",
		Short: "Run a multi-package delivery round",
		Long:  "Serve a YAML task list (pickup, dropoff, priority per package) with a single courier, highest priority first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tasksPath == "" {
				return fmt.Errorf("task file is required (use --tasks)")
			}
			return runDeliver(flags, strategy, tasksPath)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "astar", "planning strategy")
	cmd.Flags().StringVar(&tasksPath, "tasks", "", "YAML file with the delivery tasks")
	cmd.MarkFlagRequired("tasks")
	return cmd
}

func runDeliver(flags *problemFlags, strategy, tasksPath string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	env, mapName, err := loadMap(flags.mapName)
	if err != nil {
		return err
	}
	base, err := flags.request()
	if err != nil {
		return err
	}
	tasks, err := loadTasks(tasksPath)
	if err != nil {
		return err
	}

	p := planner.New(plannerConfig(cfg))
	pathCache := cache.New(cfg.Cache.Capacity, p.Plan)
	recorder := eventlog.NewRecorder()

	courier := agent.NewCourier(env, pathCache, recorder, agent.Config{
		Start:        base.Start,
		Strategy:     types.Strategy(strategy),
		Heuristic:    base.Heuristic,
		Connectivity: base.Connectivity,
		StepBudget:   cfg.Agent.StepBudget,
		ReplanBudget: cfg.Agent.ReplanBudget,
		Fuel:         cfg.Agent.Fuel,
		Fallback:     types.Strategy(cfg.Agent.Fallback),
		StartTime:    base.TimeOffset,
	}, tasks)

	fmt.Printf("Delivering %d packages on %s from %s\n", len(tasks), mapName, base.Start)
	stats, err := courier.Run()
	fmt.Printf("Delivered %d/%d  steps=%d  replans=%d  fuel=%.1f\n",
		stats.Deliveries, len(tasks), stats.Steps, stats.Replans, stats.FuelUsed)
	if err != nil {
		return fmt.Errorf("delivery round failed: %w", err)
	}
	return nil
}

func buildExperimentCommand() *cobra.Command {
	flags := &problemFlags{}
	var strategy, output string

	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Run a full experiment and write a JSON report",
		Long:  "Compare all strategies, then simulate the chosen strategy under the live obstacle schedules, and persist everything (results, cache counters, agent summary) as a JSON report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(flags, strategy, output)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "astar", "strategy to simulate after the comparison")
	cmd.Flags().StringVarP(&output, "output", "o", "experiment_results.json", "report output path")
	return cmd
}

func runExperiment(flags *problemFlags, strategy, output string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	env, mapName, err := loadMap(flags.mapName)
	if err != nil {
		return err
	}
	base, err := flags.request()
	if err != nil {
		return err
	}

	collector := startMetrics(cfg)
	p := planner.New(plannerConfig(cfg))
	pathCache := cache.New(cfg.Cache.Capacity, p.Plan)
	if collector != nil {
		p.SetObserver(collector)
		pathCache.SetObserver(collector)
	}

	results, err := p.Compare(env, base, types.Strategies())
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}
	printComparison(mapName, base, results)

	recorder := eventlog.NewRecorder()
	courier, err := agent.New(env, pathCache, recorder, agent.Config{
		Start:        base.Start,
		Goal:         base.Goal,
		Strategy:     types.Strategy(strategy),
		Heuristic:    base.Heuristic,
		Connectivity: base.Connectivity,
		StepBudget:   cfg.Agent.StepBudget,
		ReplanBudget: cfg.Agent.ReplanBudget,
		Fuel:         cfg.Agent.Fuel,
		Fallback:     types.Strategy(cfg.Agent.Fallback),
		StartTime:    base.TimeOffset,
	})
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}
	final, runErr := courier.Run()

	rep := buildReport(env, mapName, base, results)
	cacheStats := pathCache.Snapshot()
	rep.Cache = &report.CacheReport{
		Hits:       cacheStats.Hits,
		Misses:     cacheStats.Misses,
		Evictions:  cacheStats.Evictions,
		StaleDrops: cacheStats.StaleDrops,
	}
	rep.Agent = &report.AgentReport{
		Status:     final.Status.String(),
		Steps:      final.Steps,
		Replans:    final.Replans,
		FinalTime:  final.Time,
		Events:     recorder.Len(),
		FailReason: final.FailReason,
	}

	if err := report.NewManager(output).Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Printf("Report written to %s\n", output)

	if runErr != nil {
		return fmt.Errorf("simulation failed: %w", runErr)
	}
	return nil
}

func buildReport(env *environment.Environment, mapName string, base types.PlanRequest, results []planner.StrategyResult) report.Report {
	rep := report.Report{
		Map: report.MapInfo{Name: mapName, Width: env.Width(), Height: env.Height()},
		Request: report.RequestInfo{
			Start:        base.Start,
			Goal:         base.Goal,
			Heuristic:    string(base.Heuristic),
			Connectivity: base.Connectivity.String(),
			TimeOffset:   base.TimeOffset,
		},
	}
	for _, r := range results {
		row := report.StrategyReport{
			Strategy:   string(r.Strategy),
			Success:    r.Success,
			PlanningMS: float64(r.Elapsed.Microseconds()) / 1000,
			Error:      r.Err,
		}
		if r.Success {
			row.Cost = r.Path.Cost
			row.Steps = r.Path.Edges()
			row.NodesExpanded = r.Path.Stats.NodesExpanded
		}
		rep.Results = append(rep.Results, row)
	}
	return rep
}

func writeEvents(path string, events []types.Event) error {
	sink, err := eventlog.NewFileSink(path, 0)
	if err != nil {
		return err
	}
	for _, event := range events {
		if err := sink.Append(event); err != nil {
			sink.Close()
			return err
		}
	}
	return sink.Close()
}

// startMetrics starts the Prometheus endpoint when enabled and returns the
// collector, or nil when disabled.
func startMetrics(cfg *Config) *metrics.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	collector := metrics.NewCollector()
	port := cfg.Metrics.Port
	if port == 0 {
		port = 9090
	}
	go func() {
		slog.Info("starting metrics server", "port", port)
		if err := collector.StartServer(port); err != nil {
			slog.Error("metrics server error", "err", err)
		}
	}()
	return collector
}

func plannerConfig(cfg *Config) planner.Config {
	return planner.Config{
		MaxExpansions:  cfg.Planner.MaxExpansions,
		MaxRestarts:    cfg.Planner.MaxRestarts,
		AnnealingSteps: cfg.Planner.AnnealingSteps,
		InitialTemp:    cfg.Planner.InitialTemp,
		Cooling:        cfg.Planner.Cooling,
		MinTemp:        cfg.Planner.MinTemp,
		Seed:           cfg.Planner.Seed,
	}
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// The default path is optional; an explicitly named file is not.
		if os.IsNotExist(err) && path == defaultConfigPath {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Cache.Capacity = 128
	cfg.Planner.Seed = 42
	cfg.Metrics.Port = 9090
	return cfg
}

// parsePosition parses "x,y" into a Position.
func parsePosition(s string) (types.Position, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return types.Position{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return types.Position{}, fmt.Errorf("bad x in %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return types.Position{}, fmt.Errorf("bad y in %q: %w", s, err)
	}
	return types.Position{X: x, Y: y}, nil
}
