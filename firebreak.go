package firebreak

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/firebreak/internal/bushfire"
	"github.com/aretw0/firebreak/internal/runtime"
	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/dsl"
	"github.com/aretw0/firebreak/pkg/ports"
	"github.com/aretw0/firebreak/pkg/stages"
)

// Version is the release version, overridden at build time with -ldflags.
var Version = "0.1.0"

// Planner is the high-level entry point for the library.
// It wires the bushfire planning graph to a runtime engine.
type Planner struct {
	runtime *runtime.Engine
	graph   *dsl.Graph

	notifier    stages.Notifier
	runtimeOpts []runtime.EngineOption
	now         func() time.Time
}

// Option defines a functional option for configuring the Planner.
type Option func(*Planner)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Planner) {
		p.runtimeOpts = append(p.runtimeOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.runtimeOpts = append(p.runtimeOpts, runtime.WithLogger(logger))
	}
}

// WithNotifier receives stage narration and assessment summaries.
func WithNotifier(n stages.Notifier) Option {
	return func(p *Planner) {
		p.notifier = n
	}
}

// WithMaxVisits bounds how often one stage may run per call. Zero is unbounded.
func WithMaxVisits(n int) Option {
	return func(p *Planner) {
		p.runtimeOpts = append(p.runtimeOpts, runtime.WithMaxVisits(n))
	}
}

// WithClock overrides the time source for checkpoints and the plan date.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
		p.runtimeOpts = append(p.runtimeOpts, runtime.WithClock(now))
	}
}

// New creates a Planner persisting to store.
func New(store ports.CheckpointStore, inferer ports.Inferer, prompter ports.Prompter, opts ...Option) (*Planner, error) {
	if store == nil {
		return nil, fmt.Errorf("planner needs a checkpoint store")
	}
	p := &Planner{}
	for _, opt := range opts {
		opt(p)
	}

	g, err := bushfire.Build(bushfire.Deps{
		Inferer:  inferer,
		Prompter: prompter,
		Notifier: p.notifier,
		Now:      p.now,
	})
	if err != nil {
		return nil, fmt.Errorf("error building planning graph: %w", err)
	}
	p.graph = g
	p.runtime = runtime.NewEngine(g, store, p.runtimeOpts...)
	return p, nil
}

// Initial is the delta a new run starts from.
func Initial(motivation string) domain.Delta {
	return bushfire.Initial(motivation)
}

// Run starts a new run. It fails with domain.ErrRunExists if runID is taken.
func (p *Planner) Run(ctx context.Context, runID string, initial domain.Delta) (*domain.Checkpoint, error) {
	return p.runtime.Run(ctx, runID, initial)
}

// Start is Run seeded with the user's motivation.
func (p *Planner) Start(ctx context.Context, runID, motivation string) (*domain.Checkpoint, error) {
	return p.Run(ctx, runID, Initial(motivation))
}

// Resume continues a parked or failed run from its last checkpoint.
func (p *Planner) Resume(ctx context.Context, runID string) (*domain.Checkpoint, error) {
	return p.runtime.Resume(ctx, runID)
}

// Graph returns the planning topology.
func (p *Planner) Graph() *dsl.Graph {
	return p.graph
}
