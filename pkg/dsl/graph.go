package dsl

import (
	"fmt"
	"sort"

	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/ports"
)

// Graph is the compiled, immutable workflow topology.
type Graph struct {
	entry  string
	order  []string
	stages map[string]ports.Stage
	kinds  map[string]StageKind
	static map[string]string
	routes map[string]domain.Route
}

// Edge describes one outgoing transition for presentation purposes.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`

	// Label is the recognized discriminant value, empty for static edges.
	Label string `json:"label,omitempty"`

	// Fallback marks the self-loop taken when no branch matches.
	Fallback bool `json:"fallback,omitempty"`
}

// Entry returns the first stage of a fresh run.
func (g *Graph) Entry() string {
	return g.entry
}

// Stage looks up the stage registered under name.
func (g *Graph) Stage(name string) (ports.Stage, bool) {
	st, ok := g.stages[name]
	return st, ok
}

// Kind returns the kind a stage was registered with.
func (g *Graph) Kind(name string) StageKind {
	return g.kinds[name]
}

// Names returns the registered stage names in declaration order.
func (g *Graph) Names() []string {
	return append([]string{}, g.order...)
}

// Next resolves the stage that follows from for the given session.
// matched is false only when a conditional edge fell back to its self-loop.
func (g *Graph) Next(from string, s *domain.Session) (next string, matched bool, err error) {
	if to, ok := g.static[from]; ok {
		return to, true, nil
	}
	if r, ok := g.routes[from]; ok {
		to, matched := r.Resolve(s)
		return to, matched, nil
	}
	return "", false, fmt.Errorf("%w: %q", domain.ErrUnknownStage, from)
}

// Edges lists every transition in declaration order. Conditional branches
// are sorted by label and followed by their fallback.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, name := range g.order {
		if to, ok := g.static[name]; ok {
			edges = append(edges, Edge{From: name, To: to})
			continue
		}
		r, ok := g.routes[name]
		if !ok {
			continue
		}
		labels := make([]string, 0, len(r.Branches))
		for label := range r.Branches {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			edges = append(edges, Edge{From: name, To: r.Branches[label], Label: label})
		}
		edges = append(edges, Edge{From: name, To: r.Fallback, Fallback: true})
	}
	return edges
}
