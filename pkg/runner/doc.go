/*
Package runner connects the workflow engine to a console.

# Key Components

  - Console: a ports.Prompter reading one sanitized line per prompt. End of
    input suspends the run.
  - SignalManager: turns Ctrl+C into context cancellation so the engine parks
    the run at its last checkpoint.
  - Runner: starts or resumes a run, serializes it through a Locker and
    prints the outcome, including the final plan verbatim.

# Usage

	signals := runner.NewSignalManager(ctx)
	defer signals.Stop()

	r := runner.NewRunner(engine, runner.WithLocker(manager))
	if _, err := r.Start(signals.Context(), runID, initial); err != nil {
		log.Fatal(err)
	}
*/
package runner
