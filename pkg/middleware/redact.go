package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/ports"
)

// Mask replaces redacted answers.
const Mask = "***"

type redactMiddleware struct {
	next     ports.CheckpointStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a read-side middleware that masks answers whose
// question matches any of the patterns. Saves pass through untouched so the
// engine can still resume from the real data; only loads are redacted.
// It is meant for inspection surfaces.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, 0, len(patternStrings))
	for _, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return func(next ports.CheckpointStore) ports.CheckpointStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, runID string, cp *domain.Checkpoint) error {
	return m.next.Save(ctx, runID, cp)
}

func (m *redactMiddleware) Load(ctx context.Context, runID string) (*domain.Checkpoint, error) {
	cp, err := m.next.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(m.patterns) == 0 || cp.Session == nil {
		return cp, nil
	}

	masked := cp.Clone()
	for _, key := range domain.RecordKeys {
		rec := masked.Session.Record(key)
		if rec == nil {
			continue
		}
		for q := range rec.Answers {
			if m.matches(q) {
				rec.Answers[q] = Mask
			}
		}
	}
	return masked, nil
}

func (m *redactMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactMiddleware) matches(question string) bool {
	for _, p := range m.patterns {
		if p.MatchString(question) {
			return true
		}
	}
	return false
}
