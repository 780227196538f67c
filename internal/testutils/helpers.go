package testutils

import (
	"context"
	"sync"

	"github.com/aretw0/firebreak/pkg/domain"
)

// Prompter is a scripted ports.Prompter.
// Answers are consumed in order; once they run out Ask returns
// domain.ErrSuspended, the same way a closed console does.
type Prompter struct {
	mu       sync.Mutex
	answers  []string
	prompts  []string
	messages []string
}

// NewPrompter creates a prompter that replies with answers in order.
func NewPrompter(answers ...string) *Prompter {
	return &Prompter{answers: answers}
}

// Ask implements ports.Prompter.
func (p *Prompter) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return "", domain.ErrSuspended
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

// Say implements ports.Prompter.
func (p *Prompter) Say(ctx context.Context, msg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

// Prompts returns every prompt shown so far.
func (p *Prompter) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.prompts...)
}

// Messages returns every informational line written so far.
func (p *Prompter) Messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.messages...)
}

// Remaining reports how many scripted answers are left.
func (p *Prompter) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.answers)
}

// Feed appends more answers, e.g. before resuming a suspended run.
func (p *Prompter) Feed(answers ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answers = append(p.answers, answers...)
}
