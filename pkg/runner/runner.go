package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/firebreak/internal/logging"
	"github.com/aretw0/firebreak/pkg/domain"
)

// Engine is the part of the workflow engine the runner drives.
type Engine interface {
	Run(ctx context.Context, runID string, initial domain.Delta) (*domain.Checkpoint, error)
	Resume(ctx context.Context, runID string) (*domain.Checkpoint, error)
}

// Locker serializes access to a run, e.g. *session.Manager.
type Locker interface {
	WithLock(ctx context.Context, runID string, fn func(context.Context) error) error
}

// ResumableError is a failure the run can be resumed from.
type ResumableError struct {
	RunID string
	Err   error
}

func (e *ResumableError) Error() string {
	return e.Err.Error()
}

func (e *ResumableError) Unwrap() error {
	return e.Err
}

// Runner drives one run through the engine and reports how it ended.
type Runner struct {
	engine  Engine
	locker  Locker
	out     io.Writer
	logger  *slog.Logger
	program string
}

// Option configures the Runner.
type Option func(*Runner)

// WithLocker serializes runs through l.
func WithLocker(l Locker) Option {
	return func(r *Runner) {
		r.locker = l
	}
}

// WithOutput sets where outcomes and the final artifact are printed.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgram sets the command name used in resume hints.
func WithProgram(name string) Option {
	return func(r *Runner) {
		r.program = name
	}
}

// NewRunner creates a runner for engine.
func NewRunner(engine Engine, opts ...Option) *Runner {
	r := &Runner{
		engine:  engine,
		out:     os.Stdout,
		logger:  logging.NewNop(),
		program: "firebreak",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins a new run.
func (r *Runner) Start(ctx context.Context, runID string, initial domain.Delta) (*domain.Checkpoint, error) {
	return r.drive(ctx, runID, func(ctx context.Context) (*domain.Checkpoint, error) {
		return r.engine.Run(ctx, runID, initial)
	})
}

// Resume continues a parked or failed run.
func (r *Runner) Resume(ctx context.Context, runID string) (*domain.Checkpoint, error) {
	return r.drive(ctx, runID, func(ctx context.Context) (*domain.Checkpoint, error) {
		return r.engine.Resume(ctx, runID)
	})
}

// ResumeHint is the command that continues runID.
func (r *Runner) ResumeHint(runID string) string {
	return fmt.Sprintf("%s resume %s", r.program, runID)
}

func (r *Runner) drive(ctx context.Context, runID string, step func(context.Context) (*domain.Checkpoint, error)) (*domain.Checkpoint, error) {
	var cp *domain.Checkpoint
	run := func(ctx context.Context) error {
		var err error
		cp, err = step(ctx)
		return err
	}

	var err error
	if r.locker != nil {
		err = r.locker.WithLock(ctx, runID, run)
	} else {
		err = run(ctx)
	}
	return cp, r.report(runID, cp, err)
}

// report prints the outcome. Interrupted runs are suspended, not failed.
func (r *Runner) report(runID string, cp *domain.Checkpoint, err error) error {
	if err != nil {
		if cp != nil && cp.Status == domain.StatusSuspended && isInterrupt(err) {
			r.logger.Debug("run interrupted", "run_id", runID, "next", cp.Next)
			r.printSuspended(runID)
			return nil
		}
		if cp != nil && cp.Status == domain.StatusFailed {
			return &ResumableError{RunID: runID, Err: err}
		}
		return err
	}

	switch cp.Status {
	case domain.StatusCompleted:
		r.PrintArtifact(cp.Session)
	case domain.StatusQuit:
		fmt.Fprintln(r.out, "Goodbye! ...")
	case domain.StatusSuspended:
		r.printSuspended(runID)
	}
	return nil
}

func (r *Runner) printSuspended(runID string) {
	fmt.Fprintf(r.out, "\nSession saved. Continue with: %s\n", r.ResumeHint(runID))
}

// PrintArtifact prints the final plan verbatim, one line at a time.
func (r *Runner) PrintArtifact(s *domain.Session) {
	if s == nil || len(s.FinalArtifact) == 0 {
		fmt.Fprintln(r.out, "Planning complete - no plan created")
		return
	}
	fmt.Fprintln(r.out, "\nPlanning complete - here is your plan:")
	fmt.Fprintln(r.out, strings.Repeat("-", 50))
	for _, l := range s.FinalArtifact {
		fmt.Fprintln(r.out, l)
	}
}

func isInterrupt(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
