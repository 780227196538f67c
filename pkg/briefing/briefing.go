// Package briefing renders session state into the context passed to the
// inference collaborator.
//
// Build is pure and deterministic: equal sessions always produce
// byte-identical text. Sections appear in a fixed order (motivation,
// transcript, then each present record in domain.RecordKeys order) and every
// map is rendered with sorted keys.
package briefing

import (
	"sort"
	"strings"

	"github.com/aretw0/firebreak/pkg/domain"
)

// MotivationLabel prefixes the motivation section.
const MotivationLabel = "User's reason for creating bushfire plan"

// Build assembles the briefing for s.
func Build(s *domain.Session) string {
	if s == nil {
		return ""
	}

	var parts []string
	if s.Motivation != "" {
		parts = append(parts, MotivationLabel+": "+s.Motivation)
	}
	for _, msg := range s.Transcript {
		if msg.Content == "" {
			continue
		}
		parts = append(parts, msg.Content)
	}
	for _, key := range domain.RecordKeys {
		if rec := s.Record(key); rec != nil {
			parts = append(parts, Record(key, rec))
		}
	}
	return strings.Join(parts, "\n\n")
}

// Record renders a single assessment record under its title.
func Record(key domain.RecordKey, a *domain.Assessment) string {
	var b strings.Builder
	b.WriteString(key.Title())
	b.WriteString(":\n")

	line(&b, "Classification", classification(a.Classification))
	if a.Summary != "" {
		line(&b, "Summary", a.Summary)
	}
	if a.Narrative != "" {
		line(&b, "Assessment", a.Narrative)
	}

	if pending := a.Outstanding(); len(pending) > 0 {
		b.WriteString("Open questions:\n")
		for _, q := range pending {
			b.WriteString("- " + q + "\n")
		}
	}
	pairs(&b, "Answers", a.Answers)
	pairs(&b, "Details", a.Details)

	if c := a.Choice; c != nil {
		if c.LastChoice != "" {
			line(&b, "Choice", c.Prompt+" -> "+c.LastChoice)
		}
		pairs(&b, "Choices made", c.History)
	}
	return strings.TrimRight(b.String(), "\n")
}

func classification(c domain.Classification) string {
	if c == domain.Unresolved {
		return "unresolved"
	}
	return string(c)
}

func line(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

func pairs(b *strings.Builder, label string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString(label)
	b.WriteString(":\n")
	for _, k := range keys {
		b.WriteString("- " + k + ": " + m[k] + "\n")
	}
}
