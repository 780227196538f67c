package inference

import (
	"context"
	"fmt"
	"sync"
)

// Step is one scripted outcome.
type Step struct {
	Reply Reply
	Err   error
}

// Script is a deterministic Inferer that replays scripted steps per schema.
// Once a schema's steps are exhausted the last step repeats.
// It is used by tests and by the offline provider.
type Script struct {
	mu    sync.Mutex
	steps map[string][]Step
	pos   map[string]int
	calls []Request
}

// NewScript creates an empty script.
func NewScript() *Script {
	return &Script{
		steps: make(map[string][]Step),
		pos:   make(map[string]int),
	}
}

// On appends replies for the named schema.
func (s *Script) On(schema string, replies ...Reply) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range replies {
		s.steps[schema] = append(s.steps[schema], Step{Reply: r})
	}
	return s
}

// Fail appends a failing step for the named schema.
func (s *Script) Fail(schema string, err error) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps[schema] = append(s.steps[schema], Step{Err: err})
	return s
}

// Infer implements Inferer.
func (s *Script) Infer(ctx context.Context, req Request) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, req)
	steps := s.steps[req.Schema.Name]
	if len(steps) == 0 {
		return nil, fmt.Errorf("no scripted reply for schema %q", req.Schema.Name)
	}
	i := s.pos[req.Schema.Name]
	if i >= len(steps) {
		i = len(steps) - 1
	} else {
		s.pos[req.Schema.Name] = i + 1
	}
	step := steps[i]
	if step.Err != nil {
		return nil, step.Err
	}

	out := make(Reply, len(step.Reply))
	for k, v := range step.Reply {
		out[k] = v
	}
	return out, nil
}

// Calls returns the requests received so far.
func (s *Script) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request{}, s.calls...)
}

// CallsFor counts the requests received for a schema.
func (s *Script) CallsFor(schema string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Schema.Name == schema {
			n++
		}
	}
	return n
}
