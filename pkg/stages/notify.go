package stages

import (
	"context"
	"strings"

	"github.com/aretw0/firebreak/pkg/domain"
)

// Notifier receives console narration from stages.
type Notifier interface {
	// Narrate shows a line of progress text.
	Narrate(ctx context.Context, text string)

	// Summarize shows a record once its classification is resolved.
	Summarize(ctx context.Context, key domain.RecordKey, a *domain.Assessment)
}

type nopNotifier struct{}

func (nopNotifier) Narrate(context.Context, string)                                 {}
func (nopNotifier) Summarize(context.Context, domain.RecordKey, *domain.Assessment) {}

var quitTokens = []string{"exit", "quit", "q"}

// IsQuit reports whether input is one of the reserved quit tokens.
func IsQuit(input string) bool {
	clean := strings.ToLower(strings.TrimSpace(input))
	for _, tok := range quitTokens {
		if clean == tok {
			return true
		}
	}
	return false
}

// Option configures a stage.
type Option func(*options)

type options struct {
	notifier Notifier
	intro    string
	progress string
}

// WithNotifier sets where narration goes.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithIntro sets a line narrated the first time the stage runs in a run.
func WithIntro(text string) Option {
	return func(o *options) {
		o.intro = text
	}
}

// WithProgress sets a line narrated on every execution.
func WithProgress(text string) Option {
	return func(o *options) {
		o.progress = text
	}
}

// narration is embedded by every stage. It holds no per-run state so one
// stage can serve many runs.
type narration struct {
	opts options
}

func newNarration(opts []Option) narration {
	o := options{notifier: nopNotifier{}}
	for _, opt := range opts {
		opt(&o)
	}
	return narration{opts: o}
}

// announce narrates the intro when first is set, then the progress line.
// Callers derive first from the session so it holds per run.
func (n *narration) announce(ctx context.Context, first bool) {
	if n.opts.intro != "" && first {
		n.opts.notifier.Narrate(ctx, n.opts.intro)
	}
	if n.opts.progress != "" {
		n.opts.notifier.Narrate(ctx, n.opts.progress)
	}
}
