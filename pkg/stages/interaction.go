package stages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/ports"
)

// ErrNoOptions is returned when a choice stage is declared without options.
var ErrNoOptions = errors.New("choice stage requires at least one option")

// QuestionsStage asks every outstanding question of one record.
type QuestionsStage struct {
	narration
	key      domain.RecordKey
	prompter ports.Prompter
}

// Questions creates the interaction stage that answers the open questions of key.
func Questions(key domain.RecordKey, p ports.Prompter, opts ...Option) *QuestionsStage {
	return &QuestionsStage{
		narration: newNarration(opts),
		key:       key,
		prompter:  p,
	}
}

// Execute implements ports.Stage.
// Nothing is asked and the delta is empty when no question is outstanding.
func (st *QuestionsStage) Execute(ctx context.Context, s *domain.Session) (domain.Delta, error) {
	pending := s.Record(st.key).Outstanding()
	if len(pending) == 0 {
		return domain.Delta{}, nil
	}

	st.announce(ctx, len(s.Record(st.key).Answers) == 0)

	answers := make(map[string]string, len(pending))
	for _, q := range pending {
		answer, err := st.ask(ctx, q)
		if err != nil {
			return domain.Delta{}, err
		}
		answers[q] = answer
	}

	return domain.Delta{Records: []domain.RecordDelta{{
		Key:     st.key,
		Answers: answers,
	}}}, nil
}

func (st *QuestionsStage) ask(ctx context.Context, question string) (string, error) {
	for {
		input, err := st.prompter.Ask(ctx, question)
		if err != nil {
			return "", err
		}
		if IsQuit(input) {
			return "", domain.ErrQuit
		}
		if answer := strings.TrimSpace(input); answer != "" {
			return answer, nil
		}
		if err := st.prompter.Say(ctx, "Please enter an answer."); err != nil {
			return "", err
		}
	}
}

// ChoiceStage asks the user to pick one of a fixed set of options.
type ChoiceStage struct {
	narration
	key      domain.RecordKey
	prompt   string
	options  []string
	prompter ports.Prompter
}

// Choice creates the interaction stage that records a selection on key.
func Choice(key domain.RecordKey, prompt string, choices []string, p ports.Prompter, opts ...Option) (*ChoiceStage, error) {
	if len(choices) == 0 {
		return nil, fmt.Errorf("%s: %w", prompt, ErrNoOptions)
	}
	return &ChoiceStage{
		narration: newNarration(opts),
		key:       key,
		prompt:    prompt,
		options:   append([]string{}, choices...),
		prompter:  p,
	}, nil
}

// Execute implements ports.Stage.
// Input is matched case-insensitively and stored as typed.
func (st *ChoiceStage) Execute(ctx context.Context, s *domain.Session) (domain.Delta, error) {
	st.announce(ctx, !st.decided(s))

	listed := strings.Join(st.options, "/")
	for {
		input, err := st.prompter.Ask(ctx, fmt.Sprintf("%s (%s)", st.prompt, listed))
		if err != nil {
			return domain.Delta{}, err
		}
		if IsQuit(input) {
			return domain.Delta{}, domain.ErrQuit
		}

		selection := strings.TrimSpace(input)
		if st.allowed(selection) {
			return domain.Delta{Records: []domain.RecordDelta{{
				Key: st.key,
				Choice: &domain.ChoiceDelta{
					Prompt:    st.prompt,
					Options:   st.options,
					Selection: selection,
				},
			}}}, nil
		}

		if err := st.prompter.Say(ctx, "Invalid choice. Please select from: "+listed); err != nil {
			return domain.Delta{}, err
		}
	}
}

func (st *ChoiceStage) decided(s *domain.Session) bool {
	rec := s.Record(st.key)
	if rec == nil || rec.Choice == nil {
		return false
	}
	_, ok := rec.Choice.History[st.prompt]
	return ok
}

func (st *ChoiceStage) allowed(selection string) bool {
	for _, opt := range st.options {
		if strings.EqualFold(opt, selection) {
			return true
		}
	}
	return false
}
