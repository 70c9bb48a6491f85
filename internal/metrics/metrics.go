// ============================================================================
// Metrics - Prometheus instrumentation for planning and execution
// ============================================================================
//
// Package: internal/metrics
// Purpose: Collects and exposes runtime metrics for the planners, the path
//          cache and the delivery agents.
//
// Metric groups:
//
//   1. Planner counters and histograms, labeled by strategy:
//      - courier_plans_total{strategy,outcome}: planning calls by result
//      - courier_nodes_expanded: distribution of search effort per call
//      - courier_planning_duration_seconds: planning latency distribution
//
//   2. Cache counters:
//      - courier_cache_hits_total / courier_cache_misses_total
//      - courier_cache_evictions_total / courier_cache_stale_drops_total
//
//   3. Agent metrics:
//      - courier_replans_total: planner re-invocations after blocking
//      - courier_agent_steps: moves executed by the most recent run
//
// Exposure:
//   Served on /metrics via promhttp, scraped by Prometheus. Each Collector
//   owns its registry so independent runs never collide on registration.
//
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/courierlab/gridcourier/pkg/types"
)

// Collector bundles every metric the engine emits.
type Collector struct {
	registry *prometheus.Registry

	plansTotal       *prometheus.CounterVec
	nodesExpanded    prometheus.Histogram
	planningDuration prometheus.Histogram

	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheEvictions  prometheus.Counter
	cacheStaleDrops prometheus.Counter

	replansTotal prometheus.Counter
	agentSteps   prometheus.Gauge
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		plansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_plans_total",
			Help: "Total number of planning calls by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		nodesExpanded: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courier_nodes_expanded",
			Help:    "Nodes expanded per planning call",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		}),
		planningDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courier_planning_duration_seconds",
			Help:    "Planning call latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courier_cache_hits_total",
			Help: "Total number of path cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courier_cache_misses_total",
			Help: "Total number of path cache misses",
		}),
		cacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courier_cache_evictions_total",
			Help: "Total number of cache entries evicted by capacity",
		}),
		cacheStaleDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courier_cache_stale_drops_total",
			Help: "Total number of cache entries dropped for a stale environment version",
		}),
		replansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courier_replans_total",
			Help: "Total number of agent replanning events",
		}),
		agentSteps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courier_agent_steps",
			Help: "Moves executed by the most recent agent run",
		}),
	}

	c.registry.MustRegister(c.plansTotal)
	c.registry.MustRegister(c.nodesExpanded)
	c.registry.MustRegister(c.planningDuration)
	c.registry.MustRegister(c.cacheHits)
	c.registry.MustRegister(c.cacheMisses)
	c.registry.MustRegister(c.cacheEvictions)
	c.registry.MustRegister(c.cacheStaleDrops)
	c.registry.MustRegister(c.replansTotal)
	c.registry.MustRegister(c.agentSteps)

	return c
}

// RecordPlan records one planning call and its search effort.
func (c *Collector) RecordPlan(strategy types.Strategy, stats types.PathStats, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.plansTotal.WithLabelValues(string(strategy), outcome).Inc()
	c.nodesExpanded.Observe(float64(stats.NodesExpanded))
	c.planningDuration.Observe(stats.PlanningTime.Seconds())
}

// RecordCacheLookup records one cache lookup result.
func (c *Collector) RecordCacheLookup(hit bool) {
	if hit {
		c.cacheHits.Inc()
		return
	}
	c.cacheMisses.Inc()
}

// RecordEviction records a capacity eviction.
func (c *Collector) RecordEviction() {
	c.cacheEvictions.Inc()
}

// RecordStaleDrop records an entry dropped for a stale environment version.
func (c *Collector) RecordStaleDrop() {
	c.cacheStaleDrops.Inc()
}

// RecordReplan records one agent replanning event.
func (c *Collector) RecordReplan() {
	c.replansTotal.Inc()
}

// SetAgentSteps records the step count of the most recent run.
func (c *Collector) SetAgentSteps(steps int) {
	c.agentSteps.Set(float64(steps))
}

// Registry exposes the collector's registry for scraping and tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// StartServer serves the collector's metrics on /metrics.
func (c *Collector) StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}
