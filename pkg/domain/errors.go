package domain

import (
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrRunExists is returned when starting a run under an ID that is already stored.
var ErrRunExists = errors.New("run already exists")

// ErrQuit is returned by interaction stages when the user enters a quit token.
var ErrQuit = errors.New("user requested quit")

// ErrSuspended is returned by interaction stages when no input is available
// and the run must be parked until it is resumed.
var ErrSuspended = errors.New("run suspended awaiting input")

// ErrLoopLimit is returned when a stage exceeds the configured visit cap.
var ErrLoopLimit = errors.New("stage visit limit exceeded")

// ErrUnknownStage is returned when a pointer names a stage absent from the graph.
var ErrUnknownStage = errors.New("unknown stage")

// StageError wraps an unrecoverable failure raised while executing a stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
