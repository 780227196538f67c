// Package metrics exposes engine lifecycle events as Prometheus collectors.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/firebreak/pkg/domain"
)

const namespace = "firebreak"

// Collectors holds the engine metrics on a private registry.
type Collectors struct {
	registry *prometheus.Registry

	StageVisits   *prometheus.CounterVec
	StageErrors   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	Routes        *prometheus.CounterVec
	Checkpoints   *prometheus.CounterVec
}

// New creates and registers the collectors. Process and Go runtime metrics
// are included when withRuntime is true.
func New(withRuntime bool) *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		StageVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_visits_total",
			Help:      "Total number of stage executions",
		}, []string{"stage"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Stage executions that returned an error, including quit and suspend",
		}, []string{"stage"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of stage executions",
			Buckets:   []float64{.01, .1, .5, 1, 5, 15, 30, 60, 120},
		}, []string{"stage"}),
		Routes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_decisions_total",
			Help:      "Routing decisions by edge",
		}, []string{"from", "to", "fallback"}),
		Checkpoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoints_total",
			Help:      "Checkpoint writes by run status",
		}, []string{"status"}),
	}

	c.registry.MustRegister(c.StageVisits, c.StageErrors, c.StageDuration, c.Routes, c.Checkpoints)
	if withRuntime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// Registry returns the registry the collectors live on.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into the collectors.
func (c *Collectors) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			c.StageVisits.WithLabelValues(e.Stage).Inc()
		},
		OnStageLeave: func(ctx context.Context, e *domain.StageEvent) {
			c.StageDuration.WithLabelValues(e.Stage).Observe(e.Duration.Seconds())
			if e.Err != nil {
				c.StageErrors.WithLabelValues(e.Stage).Inc()
			}
		},
		OnRoute: func(ctx context.Context, e *domain.RouteEvent) {
			c.Routes.WithLabelValues(e.From, e.To, strconv.FormatBool(e.Fallback)).Inc()
		},
		OnCheckpoint: func(ctx context.Context, e *domain.CheckpointEvent) {
			c.Checkpoints.WithLabelValues(string(e.Status)).Inc()
		},
	}
}

// Combine fans every event out to each set of hooks, in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			for _, h := range all {
				if h.OnStageEnter != nil {
					h.OnStageEnter(ctx, e)
				}
			}
		},
		OnStageLeave: func(ctx context.Context, e *domain.StageEvent) {
			for _, h := range all {
				if h.OnStageLeave != nil {
					h.OnStageLeave(ctx, e)
				}
			}
		},
		OnRoute: func(ctx context.Context, e *domain.RouteEvent) {
			for _, h := range all {
				if h.OnRoute != nil {
					h.OnRoute(ctx, e)
				}
			}
		},
		OnCheckpoint: func(ctx context.Context, e *domain.CheckpointEvent) {
			for _, h := range all {
				if h.OnCheckpoint != nil {
					h.OnCheckpoint(ctx, e)
				}
			}
		},
	}
}
