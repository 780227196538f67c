package domain

import (
	"maps"
	"time"
)

// RunStatus describes how the last engine pass over a run ended.
type RunStatus string

const (
	StatusActive    RunStatus = "active"    // Loop is running or about to run
	StatusSuspended RunStatus = "suspended" // Parked waiting for external input
	StatusQuit      RunStatus = "quit"      // User asked to stop
	StatusFailed    RunStatus = "failed"    // A stage raised an unrecoverable error
	StatusCompleted RunStatus = "completed" // Terminal marker reached
)

// Checkpoint is the persisted (session, next stage) pair of a run.
type Checkpoint struct {
	RunID   string   `json:"run_id"`
	Session *Session `json:"session"`

	// Next is the stage to execute on resume, or End.
	Next string `json:"next"`

	Status RunStatus `json:"status"`

	// Steps counts the stage executions merged so far.
	Steps int `json:"steps"`

	// LastError carries the failure message when Status is StatusFailed.
	LastError string `json:"last_error,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`

	// Annotations are opaque values owned by store middleware. The engine
	// never reads or writes them.
	Annotations map[string]string `json:"annotations,omitempty"`
}

// NewCheckpoint starts a checkpoint for a fresh run.
func NewCheckpoint(runID string, session *Session, entry string) *Checkpoint {
	return &Checkpoint{
		RunID:   runID,
		Session: session,
		Next:    entry,
		Status:  StatusActive,
	}
}

// Done reports whether the run reached its terminal marker.
func (c *Checkpoint) Done() bool {
	return c.Next == End
}

// Clone returns a deep copy.
func (c *Checkpoint) Clone() *Checkpoint {
	if c == nil {
		return nil
	}
	next := *c
	next.Session = c.Session.Clone()
	next.Annotations = maps.Clone(c.Annotations)
	return &next
}
