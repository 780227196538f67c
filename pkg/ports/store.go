package ports

import (
	"context"

	"github.com/aretw0/firebreak/pkg/domain"
)

// CheckpointStore defines the interface for persisting run checkpoints.
// This allows for durable execution, enabling "Stop & Resume" workflows.
// Implementations must be safe for concurrent use across distinct run IDs;
// concurrent writers to the same run ID are not supported (last write wins).
type CheckpointStore interface {
	// Save persists the checkpoint for a given run ID.
	Save(ctx context.Context, runID string, cp *domain.Checkpoint) error

	// Load retrieves the checkpoint for a given run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Checkpoint, error)

	// Delete removes the checkpoint for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of all stored runs.
	List(ctx context.Context) ([]string, error)
}
