package dsl

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/ports"
)

// Builder manages the graph construction.
type Builder struct {
	entry string
	order []string
	nodes map[string]*StageBuilder
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*StageBuilder),
	}
}

// Entry sets the stage a new run starts at.
func (b *Builder) Entry(name string) *Builder {
	b.entry = name
	return b
}

// Add creates a new stage in the graph.
// If the stage already exists, it returns the existing builder.
func (b *Builder) Add(name string) *StageBuilder {
	if nb, ok := b.nodes[name]; ok {
		return nb
	}
	nb := &StageBuilder{name: name}
	b.nodes[name] = nb
	b.order = append(b.order, name)
	return nb
}

// Build validates the topology and compiles it into an immutable Graph.
func (b *Builder) Build() (*Graph, error) {
	var errs []error

	if b.entry == "" {
		errs = append(errs, errors.New("entry stage not set"))
	} else if _, ok := b.nodes[b.entry]; !ok {
		errs = append(errs, fmt.Errorf("entry stage %q is not registered", b.entry))
	}

	exists := func(target string) bool {
		if target == domain.End {
			return true
		}
		_, ok := b.nodes[target]
		return ok
	}

	g := &Graph{
		entry:  b.entry,
		order:  append([]string{}, b.order...),
		stages: make(map[string]ports.Stage, len(b.nodes)),
		kinds:  make(map[string]StageKind, len(b.nodes)),
		static: make(map[string]string),
		routes: make(map[string]domain.Route),
	}

	for _, name := range b.order {
		nb := b.nodes[name]
		if name == "" || name == domain.End {
			errs = append(errs, fmt.Errorf("invalid stage name %q", name))
			continue
		}
		if nb.stage == nil {
			errs = append(errs, fmt.Errorf("stage %q has no implementation", name))
		}
		if nb.edges != 1 {
			errs = append(errs, fmt.Errorf("stage %q must declare exactly one outgoing edge, has %d", name, nb.edges))
		}

		g.stages[name] = nb.stage
		g.kinds[name] = nb.kind

		if nb.route != nil {
			if nb.route.Discriminant == nil {
				errs = append(errs, fmt.Errorf("stage %q has a route without discriminant", name))
			}
			if len(nb.route.Branches) == 0 {
				errs = append(errs, fmt.Errorf("stage %q has a route without branches", name))
			}
			targets := make([]string, 0, len(nb.route.Branches))
			for _, target := range nb.route.Branches {
				targets = append(targets, target)
			}
			sort.Strings(targets)
			for _, target := range targets {
				if !exists(target) {
					errs = append(errs, fmt.Errorf("stage %q routes to unknown stage %q", name, target))
				}
			}
			g.routes[name] = *nb.route
			continue
		}

		if nb.next != "" {
			if !exists(nb.next) {
				errs = append(errs, fmt.Errorf("stage %q goes to unknown stage %q", name, nb.next))
			}
			g.static[name] = nb.next
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid graph: %w", errors.Join(errs...))
	}
	return g, nil
}
