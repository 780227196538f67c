package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/dsl"
)

const (
	startID = "__start__"
	endID   = "__end__"
)

// Overlay highlights where a run currently is.
type Overlay struct {
	Current string
	Status  domain.RunStatus
}

// GenerateMermaid produces a Mermaid flowchart for g.
// It applies semantic styling:
// - Start/End: ((Circle))
// - Interaction: [/Parallelogram/]
// - Inference: [[Subroutine]]
// Fallback self-loops are dotted. The overlay, if any, marks the next stage.
func GenerateMermaid(g *dsl.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    %s((\"start\"))\n", startID)

	for _, name := range g.Names() {
		opener, closer := "[", "]"
		switch g.Kind(name) {
		case dsl.KindInteraction:
			opener, closer = "[/", "/]"
		case dsl.KindInference:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(name), opener, name, closer)
	}
	fmt.Fprintf(&sb, "    %s((\"end\"))\n", endID)

	fmt.Fprintf(&sb, "    %s --> %s\n", startID, sanitizeMermaidID(g.Entry()))
	for _, e := range g.Edges() {
		from, to := sanitizeMermaidID(e.From), sanitizeMermaidID(e.To)
		switch {
		case e.Fallback:
			fmt.Fprintf(&sb, "    %s -. \"default\" .-> %s\n", from, to)
		case e.Label != "":
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, strings.ReplaceAll(e.Label, "\"", "'"), to)
		default:
			fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
		}
	}

	if overlay != nil && overlay.Current != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast regardless of theme
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:4px,color:#000;\n")
		class := "current"
		if overlay.Status == domain.StatusFailed {
			class = "failed"
		}
		fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(overlay.Current), class)
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	if id == domain.End {
		return endID
	}
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
