/*
Package dsl provides a fluent builder for the fixed workflow graph.

The topology is declared once at build time: every stage is registered with
exactly one outgoing edge, either a static edge to a fixed destination or a
conditional route whose fallback is the stage itself. Build validates the
graph and returns an immutable Graph for the engine.

Example usage:

	b := dsl.New().Entry("classify_risk")

	b.Add("classify_risk").
		Inference(assessRisk).
		Branch(domain.ClassificationOf(domain.RecordRisk), map[string]string{
			"unclear": "ask_risk_questions",
			"low":     "show_plan",
			"high":    "show_plan",
		})

	b.Add("ask_risk_questions").
		Interaction(askRisk).
		Go("classify_risk")

	b.Add("show_plan").
		Inference(showPlan).
		Terminal()

	graph, err := b.Build()
*/
package dsl
