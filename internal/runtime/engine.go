package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/dsl"
	"github.com/aretw0/firebreak/pkg/ports"
)

// Engine is the core state machine runner.
type Engine struct {
	graph     *dsl.Graph
	store     ports.CheckpointStore
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	maxVisits int
	now       func() time.Time
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for stage and routing diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxVisits bounds how often a single stage may execute within one
// Run or Resume call. Zero means unbounded.
func WithMaxVisits(n int) EngineOption {
	return func(e *Engine) {
		if n >= 0 {
			e.maxVisits = n
		}
	}
}

// WithClock overrides the time source used for checkpoint timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a new engine over a compiled graph and a checkpoint store.
func NewEngine(graph *dsl.Graph, store ports.CheckpointStore, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:  graph,
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the topology the engine runs.
func (e *Engine) Graph() *dsl.Graph {
	return e.graph
}

// Run starts a new run at the graph's entry stage and drives it until it
// completes, is quit, is suspended or fails.
//
// The initial delta is merged into an empty session and checkpointed before
// the first stage executes. A quit or suspended run returns its checkpoint
// and a nil error; a failed run returns its checkpoint and a *domain.StageError.
func (e *Engine) Run(ctx context.Context, runID string, initial domain.Delta) (*domain.Checkpoint, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}

	if _, err := e.store.Load(ctx, runID); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunExists, runID)
	} else if !errors.Is(err, domain.ErrRunNotFound) {
		return nil, fmt.Errorf("failed to check run %s: %w", runID, err)
	}

	session := domain.NewSession("")
	session.Apply(initial)

	cp := domain.NewCheckpoint(runID, session, e.graph.Entry())
	if err := e.persist(ctx, cp); err != nil {
		return nil, err
	}

	e.logger.Info("run started", "run_id", runID, "entry", cp.Next)
	return e.loop(ctx, cp)
}

// Resume continues a checkpointed run from its next stage.
// A failed run retries the stage that failed.
func (e *Engine) Resume(ctx context.Context, runID string) (*domain.Checkpoint, error) {
	cp, err := e.store.Load(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if cp.Session == nil {
		cp.Session = domain.NewSession("")
	}

	e.logger.Info("run resumed", "run_id", runID, "next", cp.Next, "status", cp.Status)
	if !cp.Done() {
		cp.Status = domain.StatusActive
		cp.LastError = ""
	}
	return e.loop(ctx, cp)
}

func (e *Engine) loop(ctx context.Context, cp *domain.Checkpoint) (*domain.Checkpoint, error) {
	visits := make(map[string]int)

	for {
		if cp.Done() {
			if cp.Status != domain.StatusCompleted {
				cp.Status = domain.StatusCompleted
				if err := e.persist(ctx, cp); err != nil {
					return cp, err
				}
			}
			e.logger.Info("run completed", "run_id", cp.RunID, "steps", cp.Steps)
			return cp, nil
		}

		if err := ctx.Err(); err != nil {
			return e.park(ctx, cp, err)
		}

		name := cp.Next
		stage, ok := e.graph.Stage(name)
		if !ok {
			return e.fail(ctx, cp, &domain.StageError{Stage: name, Err: domain.ErrUnknownStage})
		}

		visits[name]++
		if e.maxVisits > 0 && visits[name] > e.maxVisits {
			return e.fail(ctx, cp, &domain.StageError{
				Stage: name,
				Err:   fmt.Errorf("%w: %d visits", domain.ErrLoopLimit, e.maxVisits),
			})
		}

		delta, err := e.execute(ctx, cp.RunID, name, visits[name], stage, cp.Session)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrQuit):
			e.logger.Info("run quit by user", "run_id", cp.RunID, "stage", name)
			cp.Status = domain.StatusQuit
			return cp, e.persist(ctx, cp)
		case errors.Is(err, domain.ErrSuspended):
			return e.park(ctx, cp, nil)
		case ctx.Err() != nil:
			return e.park(ctx, cp, ctx.Err())
		default:
			return e.fail(ctx, cp, &domain.StageError{Stage: name, Err: err})
		}

		cp.Session.Apply(delta)

		next, matched, err := e.graph.Next(name, cp.Session)
		if err != nil {
			return e.fail(ctx, cp, &domain.StageError{Stage: name, Err: err})
		}
		e.route(ctx, cp.RunID, name, next, matched)

		cp.Next = next
		cp.Steps++
		if cp.Done() {
			cp.Status = domain.StatusCompleted
		}
		if err := e.persist(ctx, cp); err != nil {
			return cp, err
		}
	}
}

// execute runs a stage on a private copy of the session.
func (e *Engine) execute(ctx context.Context, runID, name string, visit int, stage ports.Stage, s *domain.Session) (domain.Delta, error) {
	e.logger.Debug("stage enter", "run_id", runID, "stage", name, "visit", visit)
	if e.hooks.OnStageEnter != nil {
		e.hooks.OnStageEnter(ctx, &domain.StageEvent{
			EventBase: e.event(domain.EventStageEnter, runID),
			Stage:     name,
			Visit:     visit,
		})
	}

	start := e.now()
	delta, err := stage.Execute(ctx, s.Clone())
	elapsed := e.now().Sub(start)

	e.logger.Debug("stage leave", "run_id", runID, "stage", name, "duration", elapsed, "error", err)
	if e.hooks.OnStageLeave != nil {
		e.hooks.OnStageLeave(ctx, &domain.StageEvent{
			EventBase: e.event(domain.EventStageLeave, runID),
			Stage:     name,
			Visit:     visit,
			Duration:  elapsed,
			Err:       err,
		})
	}
	return delta, err
}

func (e *Engine) route(ctx context.Context, runID, from, to string, matched bool) {
	if matched {
		e.logger.Debug("route", "run_id", runID, "from", from, "to", to)
	} else {
		e.logger.Warn("unresolved outcome, repeating stage", "run_id", runID, "stage", from)
	}
	if e.hooks.OnRoute != nil {
		e.hooks.OnRoute(ctx, &domain.RouteEvent{
			EventBase: e.event(domain.EventRoute, runID),
			From:      from,
			To:        to,
			Fallback:  !matched,
		})
	}
}

// park records a suspended run. cause is returned unchanged so callers can
// tell an interrupt from an exhausted console.
func (e *Engine) park(ctx context.Context, cp *domain.Checkpoint, cause error) (*domain.Checkpoint, error) {
	e.logger.Info("run suspended", "run_id", cp.RunID, "next", cp.Next)
	cp.Status = domain.StatusSuspended
	if err := e.persist(ctx, cp); err != nil {
		return cp, errors.Join(cause, err)
	}
	return cp, cause
}

// fail records a failed run. The session and next pointer are left as they
// were before the failing stage, so Resume retries it.
func (e *Engine) fail(ctx context.Context, cp *domain.Checkpoint, stageErr *domain.StageError) (*domain.Checkpoint, error) {
	e.logger.Error("stage failed", "run_id", cp.RunID, "stage", stageErr.Stage, "error", stageErr.Err)
	cp.Status = domain.StatusFailed
	cp.LastError = stageErr.Error()
	if err := e.persist(ctx, cp); err != nil {
		return cp, errors.Join(stageErr, err)
	}
	return cp, stageErr
}

// persist saves the checkpoint. It survives cancellation of ctx so that an
// interrupted run still leaves a consistent checkpoint behind.
func (e *Engine) persist(ctx context.Context, cp *domain.Checkpoint) error {
	cp.UpdatedAt = e.now().UTC()
	if err := e.store.Save(context.WithoutCancel(ctx), cp.RunID, cp); err != nil {
		return fmt.Errorf("failed to save checkpoint for %s: %w", cp.RunID, err)
	}

	e.logger.Debug("checkpoint saved", "run_id", cp.RunID, "next", cp.Next, "status", cp.Status, "steps", cp.Steps)
	if e.hooks.OnCheckpoint != nil {
		e.hooks.OnCheckpoint(ctx, &domain.CheckpointEvent{
			EventBase: e.event(domain.EventCheckpoint, cp.RunID),
			Next:      cp.Next,
			Status:    cp.Status,
		})
	}
	return nil
}

func (e *Engine) event(t domain.EventType, runID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		RunID:     runID,
	}
}
