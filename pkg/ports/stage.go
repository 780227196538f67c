package ports

import (
	"context"

	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/inference"
)

// Stage is a unit of work in the workflow graph.
//
// Execute receives a private copy of the session and returns the delta to merge.
// Interaction stages return domain.ErrQuit when the user asks to stop and
// domain.ErrSuspended when no input is available. Any other error is an
// unrecoverable stage failure. Re-executing a stage whose goal is already
// satisfied must be harmless.
type Stage interface {
	Execute(ctx context.Context, session *domain.Session) (domain.Delta, error)
}

// StageFunc adapts a plain function to the Stage interface.
type StageFunc func(ctx context.Context, session *domain.Session) (domain.Delta, error)

// Execute calls f.
func (f StageFunc) Execute(ctx context.Context, session *domain.Session) (domain.Delta, error) {
	return f(ctx, session)
}

// Inferer is the structured-inference collaborator.
// It returns a reply constrained to req.Schema, or an error for transport
// failures and replies that do not satisfy the schema.
type Inferer = inference.Inferer

// Prompter reads one line of user input for a prompt.
// It returns domain.ErrSuspended when no further input can be read.
type Prompter interface {
	Ask(ctx context.Context, prompt string) (string, error)

	// Say writes an informational line (never blocks for input).
	Say(ctx context.Context, msg string) error
}
