package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/firebreak"
	"github.com/aretw0/firebreak/internal/bushfire"
	"github.com/aretw0/firebreak/internal/presentation/graph"
	"github.com/aretw0/firebreak/pkg/adapters/memory"
	"github.com/aretw0/firebreak/pkg/dsl"
	"github.com/aretw0/firebreak/pkg/runner"
)

// StaticGraph builds the planning topology without live collaborators.
func StaticGraph() (*dsl.Graph, error) {
	p, err := firebreak.New(memory.NewStore(), bushfire.Offline(), runner.NewConsole(strings.NewReader(""), io.Discard))
	if err != nil {
		return nil, err
	}
	return p.Graph(), nil
}

// WriteGraph prints the Mermaid diagram of the planning graph. With app and
// runID set the run's next stage is highlighted.
func WriteGraph(ctx context.Context, app *App, runID string, w io.Writer) error {
	g, err := StaticGraph()
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if app != nil && runID != "" {
		cp, err := app.Manager.Load(ctx, runID)
		if err != nil {
			return fmt.Errorf("error loading run '%s': %w", runID, err)
		}
		overlay = &graph.Overlay{Current: cp.Next, Status: cp.Status}
	}

	fmt.Fprint(w, graph.GenerateMermaid(g, overlay))
	return nil
}
