package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// SignalManager turns SIGINT and SIGTERM into context cancellation so an
// interrupted run is parked with its last checkpoint instead of killed.
type SignalManager struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager starts listening for signals, derived from parent.
func NewSignalManager(parent context.Context) *SignalManager {
	sm := &SignalManager{}
	sm.ctx, sm.cancel = signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return sm
}

// Context is cancelled on the first signal.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Interrupted reports whether a signal (or the parent) cancelled the context.
func (sm *SignalManager) Interrupted() bool {
	return sm.ctx.Err() != nil
}

// Stop releases the signal handler.
func (sm *SignalManager) Stop() {
	sm.cancel()
}

// Settle waits briefly for a signal that may trail an input error.
// Some terminals deliver EOF on Ctrl+C slightly before the interrupt.
func (sm *SignalManager) Settle(d time.Duration) bool {
	if sm.ctx.Err() != nil {
		return true
	}
	select {
	case <-sm.ctx.Done():
		return true
	case <-time.After(d):
		return false
	}
}
