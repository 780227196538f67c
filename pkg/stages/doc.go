/*
Package stages provides the two kinds of workflow stages.

Interaction stages (Questions, Choice) collect input through a ports.Prompter.
They honour the quit tokens "exit", "quit" and "q" at every prompt by
returning domain.ErrQuit, and pass domain.ErrSuspended through when the
console has no more input.

Inference stages (Assessment, Document) build the briefing for the current
session, call the structured-inference collaborator once and turn the reply
into a delta. They never retry; an unresolved classification is left to the
graph's self-loop and transport failures surface as errors.
*/
package stages
