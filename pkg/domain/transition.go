package domain

import "strings"

// Discriminant reads the value a conditional edge branches on.
// It returns "" when the value is absent.
type Discriminant func(*Session) string

// ClassificationOf reads the classification of a record.
func ClassificationOf(key RecordKey) Discriminant {
	return func(s *Session) string {
		rec := s.Record(key)
		if rec == nil {
			return ""
		}
		return string(rec.Classification)
	}
}

// LastChoiceOf reads the last confirmed choice of a record.
func LastChoiceOf(key RecordKey) Discriminant {
	return func(s *Session) string {
		rec := s.Record(key)
		if rec == nil || rec.Choice == nil {
			return ""
		}
		return rec.Choice.LastChoice
	}
}

// Route is a conditional edge.
// Branches maps recognized values (lower case) to destination stages. Any
// value that is absent, empty or unrecognized goes to Fallback, which is the
// source stage itself so an undecided outcome forces another attempt.
type Route struct {
	Source       string
	Discriminant Discriminant
	Branches     map[string]string
	Fallback     string
}

// NewRoute creates a route whose fallback is a self-loop on source.
func NewRoute(source string, d Discriminant, branches map[string]string) Route {
	normalized := make(map[string]string, len(branches))
	for value, target := range branches {
		normalized[strings.ToLower(strings.TrimSpace(value))] = target
	}
	return Route{
		Source:       source,
		Discriminant: d,
		Branches:     normalized,
		Fallback:     source,
	}
}

// Next resolves the destination for the current session.
func (r Route) Next(s *Session) string {
	dest, _ := r.Resolve(s)
	return dest
}

// Resolve is like Next but also reports whether a branch matched.
func (r Route) Resolve(s *Session) (string, bool) {
	if r.Discriminant == nil {
		return r.Fallback, false
	}
	value := strings.ToLower(strings.TrimSpace(r.Discriminant(s)))
	if value == "" {
		return r.Fallback, false
	}
	if dest, ok := r.Branches[value]; ok {
		return dest, true
	}
	return r.Fallback, false
}
