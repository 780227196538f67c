package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Inferer is implemented by every structured-inference backend.
type Inferer interface {
	Infer(ctx context.Context, req Request) (Reply, error)
}

// InfererFunc adapts a function to the Inferer interface.
type InfererFunc func(ctx context.Context, req Request) (Reply, error)

// Infer calls f.
func (f InfererFunc) Infer(ctx context.Context, req Request) (Reply, error) {
	return f(ctx, req)
}

// ErrUnavailable wraps a collaborator failure that survived the retry policy.
var ErrUnavailable = errors.New("inference service unavailable")

// Guard bounds each call with a timeout and retries a failed call once.
// Schema violations are not retried; they surface immediately.
type Guard struct {
	next    Inferer
	timeout time.Duration
	retries int
	backoff time.Duration
	logger  *slog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithTimeout sets the per-attempt deadline. Zero disables it.
func WithTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		g.timeout = d
	}
}

// WithRetries sets how many extra attempts follow a failure.
func WithRetries(n int) GuardOption {
	return func(g *Guard) {
		if n >= 0 {
			g.retries = n
		}
	}
}

// WithBackoff sets the pause before a retry.
func WithBackoff(d time.Duration) GuardOption {
	return func(g *Guard) {
		g.backoff = d
	}
}

// WithLogger sets the logger used to report failed attempts.
func WithLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGuard wraps next with a 60s timeout and a single retry.
func NewGuard(next Inferer, opts ...GuardOption) *Guard {
	g := &Guard{
		next:    next,
		timeout: 60 * time.Second,
		retries: 1,
		backoff: time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Infer implements Inferer.
func (g *Guard) Infer(ctx context.Context, req Request) (Reply, error) {
	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.backoff):
			}
		}

		reply, err := g.attempt(ctx, req)
		if err == nil {
			return reply, nil
		}
		if errors.Is(err, ErrSchemaViolation) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		g.logger.Warn("inference attempt failed", "schema", req.Schema.Name, "attempt", attempt+1, "err", err)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (g *Guard) attempt(ctx context.Context, req Request) (Reply, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	reply, err := g.next.Infer(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := req.Schema.Validate(reply); err != nil {
		return nil, err
	}
	return reply, nil
}
