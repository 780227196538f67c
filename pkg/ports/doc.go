/*
Package ports defines the driven ports (interfaces) for the firebreak engine.

These interfaces decouple the workflow loop from external implementations,
allowing the engine to work with various storage backends, inference services
and consoles.

# Key Interfaces

  - Stage: A unit of work executed against the session (interaction or inference).
  - CheckpointStore: Responsible for persisting and loading run checkpoints.
  - Inferer: The structured-inference collaborator (schema-constrained replies).
  - Prompter: Reads one line of user input per prompt.
  - DistributedLocker: Provides distributed locking for concurrent run access.
*/
package ports
