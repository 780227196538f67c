package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/firebreak/pkg/domain"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#f97316")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#fb923c"))
	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#111111")).
			Padding(0, 1)
	narrateStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#a3a3a3"))
)

var badgeColors = map[domain.Classification]string{
	domain.ClassLow:  "#86efac",
	domain.ClassHigh: "#fca5a5",
	domain.ClassDone: "#86efac",
	domain.ClassMore: "#fde047",
}

// Notifier prints stage narration and assessment summaries.
// It implements stages.Notifier.
type Notifier struct {
	w      io.Writer
	styled bool
	render Renderer
}

// NewNotifier creates a notifier. When styled is false output is plain text
// suitable for pipes and logs.
func NewNotifier(w io.Writer, styled bool, render Renderer) *Notifier {
	if render == nil {
		render = Plain
	}
	return &Notifier{w: w, styled: styled, render: render}
}

// Narrate prints a progress line.
func (n *Notifier) Narrate(ctx context.Context, text string) {
	if n.styled {
		text = narrateStyle.Render(text)
	}
	fmt.Fprintf(n.w, "\n%s\n", text)
}

// Summarize prints a record once its classification is resolved.
func (n *Notifier) Summarize(ctx context.Context, key domain.RecordKey, a *domain.Assessment) {
	if a == nil {
		return
	}
	if !n.styled {
		fmt.Fprint(n.w, plainSummary(key, a))
		return
	}
	fmt.Fprintln(n.w, n.card(key, a))
}

func plainSummary(key domain.RecordKey, a *domain.Assessment) string {
	var sb strings.Builder
	sb.WriteString("\n--------\n")
	if a.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n\n", a.Summary)
	}
	if a.Narrative != "" {
		fmt.Fprintf(&sb, "Assessment: %s\n\n", a.Narrative)
	}
	fmt.Fprintf(&sb, "%s: %s\n", key.Title(), a.Classification)
	sb.WriteString("--------\n\n")
	return sb.String()
}

func (n *Notifier) card(key domain.RecordKey, a *domain.Assessment) string {
	color, ok := badgeColors[a.Classification]
	if !ok {
		color = "#d4d4d4"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(key.Title()),
		" ",
		badgeStyle.Background(lipgloss.Color(color)).Render(strings.ToUpper(string(a.Classification))),
	)

	parts := []string{header}
	if a.Summary != "" {
		parts = append(parts, "", a.Summary)
	}
	if a.Narrative != "" {
		body, err := n.render(a.Narrative)
		if err != nil {
			body = a.Narrative
		}
		parts = append(parts, strings.TrimRight(body, "\n"))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
