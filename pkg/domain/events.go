package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageEnter EventType = "stage_enter"
	EventStageLeave EventType = "stage_leave"
	EventRoute      EventType = "route"
	EventCheckpoint EventType = "checkpoint"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// StageEvent represents entry into or exit from a stage.
type StageEvent struct {
	EventBase
	Stage    string        `json:"stage"`
	Visit    int           `json:"visit"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// RouteEvent records a routing decision.
type RouteEvent struct {
	EventBase
	From string `json:"from"`
	To   string `json:"to"`

	// Fallback is true when a conditional edge fell back to its self-loop.
	Fallback bool `json:"fallback,omitempty"`
}

// CheckpointEvent records a checkpoint write.
type CheckpointEvent struct {
	EventBase
	Next   string    `json:"next"`
	Status RunStatus `json:"status"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStageEnter func(context.Context, *StageEvent)
	OnStageLeave func(context.Context, *StageEvent)
	OnRoute      func(context.Context, *RouteEvent)
	OnCheckpoint func(context.Context, *CheckpointEvent)
}
