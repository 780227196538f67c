/*
Package domain contains the core models of the firebreak workflow engine.

It defines the session state shared by every stage of a run, the partial
updates (deltas) stages return, the conditional routes that pick the next
stage, and the checkpoint persisted after every step. The package is kept pure
and free of I/O or persistence concerns.

# Key Entities

  - Session: The single mutable record of a run (motivation, transcript, assessment records, final artifact).
  - Assessment: Per-stage accumulated result (classification, narrative, open questions, answers, choice).
  - Delta: A partial update merged into a Session after a stage executes.
  - Route: A conditional edge mapping a discriminant value to the next stage, with a self-loop fallback.
  - Checkpoint: The persisted (session, next stage) pair enabling resumable execution.
*/
package domain
