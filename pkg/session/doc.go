/*
Package session coordinates access to stored runs.

The Manager serializes every operation on a run ID inside the process and,
when a DistributedLocker is configured, across processes sharing the same
store. Engine passes over a run (Run, Resume) are wrapped in WithLock so two
consoles can never drive the same run at once.
*/
package session
