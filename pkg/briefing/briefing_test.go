package briefing

import (
	"fmt"
	"testing"

	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func richSession() *domain.Session {
	s := domain.NewSession("Fire season is coming", domain.Message{Role: domain.RoleSystem, Content: "You are a consultant."})
	s.Apply(domain.Delta{Records: []domain.RecordDelta{
		{
			Key:            domain.RecordRisk,
			Classification: domain.Ptr(domain.ClassHigh),
			Narrative:      domain.Ptr("Dense bush on two sides."),
			Questions:      &domain.QuestionUpdate{Items: []string{"What is your postcode?", "Is there a dam?"}},
			Answers:        map[string]string{"What is your postcode?": "3775", "How many people?": "4"},
		},
		{
			Key:     domain.RecordLeavePlan,
			Details: map[string]string{"where_to_go": "Town hall", "backup_plan": "Neighbour", "when_to_leave": "Catastrophic days"},
			Choice:  &domain.ChoiceDelta{Prompt: "Stay or leave?", Options: []string{"stay", "leave"}, Selection: "Leave"},
		},
	}})
	return s
}

func TestBuild_Deterministic(t *testing.T) {
	s := richSession()
	first := Build(s)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Build(s), "iteration %d", i)
		assert.Equal(t, first, Build(s.Clone()), "clone iteration %d", i)
	}
}

func TestBuild_Order(t *testing.T) {
	got := Build(richSession())

	want := "User's reason for creating bushfire plan: Fire season is coming\n\n" +
		"You are a consultant.\n\n" +
		"Risk Assessment:\n" +
		"Classification: high\n" +
		"Assessment: Dense bush on two sides.\n" +
		"Open questions:\n" +
		"- Is there a dam?\n" +
		"Answers:\n" +
		"- How many people?: 4\n" +
		"- What is your postcode?: 3775\n\n" +
		"Leave Plan:\n" +
		"Classification: unresolved\n" +
		"Details:\n" +
		"- backup_plan: Neighbour\n" +
		"- when_to_leave: Catastrophic days\n" +
		"- where_to_go: Town hall\n" +
		"Choice: Stay or leave? -> Leave\n" +
		"Choices made:\n" +
		"- Stay or leave?: Leave"

	assert.Equal(t, want, got)
}

func TestBuild_MapOrderIndependent(t *testing.T) {
	a := domain.NewSession("m")
	b := domain.NewSession("m")

	answers := map[string]string{}
	for i := 0; i < 20; i++ {
		answers[fmt.Sprintf("q%02d", i)] = fmt.Sprintf("a%02d", i)
	}
	a.Apply(domain.Delta{Records: []domain.RecordDelta{{Key: domain.RecordDefence, Answers: answers}}})
	for i := 19; i >= 0; i-- {
		b.Apply(domain.Delta{Records: []domain.RecordDelta{{
			Key:     domain.RecordDefence,
			Answers: map[string]string{fmt.Sprintf("q%02d", i): fmt.Sprintf("a%02d", i)},
		}}})
	}

	assert.Equal(t, Build(a), Build(b))
}

func TestBuild_Empty(t *testing.T) {
	assert.Equal(t, "", Build(nil))
	assert.Equal(t, "", Build(domain.NewSession("")))
}
