// Package runtime implements the workflow engine loop.
//
// The engine owns no state of its own between calls: every pass loads the
// checkpoint of a run, executes the stage it points to, merges the returned
// delta, resolves the next stage and persists the result before looping.
package runtime
