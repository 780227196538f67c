package dsl

import (
	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/ports"
)

// StageKind classifies a stage for presentation and validation.
type StageKind string

const (
	// KindInteraction stages collect user input directly.
	KindInteraction StageKind = "interaction"
	// KindInference stages delegate to the structured-inference collaborator.
	KindInference StageKind = "inference"
)

// StageBuilder provides a fluent API for configuring a stage.
type StageBuilder struct {
	name  string
	kind  StageKind
	stage ports.Stage
	next  string
	route *domain.Route
	edges int
}

// Interaction registers st as a user-facing stage.
func (n *StageBuilder) Interaction(st ports.Stage) *StageBuilder {
	n.kind = KindInteraction
	n.stage = st
	return n
}

// Inference registers st as a collaborator-backed stage.
func (n *StageBuilder) Inference(st ports.Stage) *StageBuilder {
	n.kind = KindInference
	n.stage = st
	return n
}

// Go adds a static edge to the target stage.
func (n *StageBuilder) Go(target string) *StageBuilder {
	n.next = target
	n.edges++
	return n
}

// Terminal adds a static edge to the terminal marker.
func (n *StageBuilder) Terminal() *StageBuilder {
	return n.Go(domain.End)
}

// Branch adds a conditional edge. Values are matched case-insensitively and
// anything unrecognized loops back to this stage.
func (n *StageBuilder) Branch(d domain.Discriminant, branches map[string]string) *StageBuilder {
	r := domain.NewRoute(n.name, d, branches)
	n.route = &r
	n.edges++
	return n
}
