package stages

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/firebreak/internal/testutils"
	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu        sync.Mutex
	lines     []string
	summaries []domain.RecordKey
}

func (n *recordingNotifier) Narrate(ctx context.Context, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lines = append(n.lines, text)
}

func (n *recordingNotifier) Summarize(ctx context.Context, key domain.RecordKey, a *domain.Assessment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, key)
}

func sessionWithQuestions(questions []string, answers map[string]string) *domain.Session {
	s := domain.NewSession("m")
	s.Apply(domain.Delta{Records: []domain.RecordDelta{{
		Key:       domain.RecordRisk,
		Questions: &domain.QuestionUpdate{Items: questions},
		Answers:   answers,
	}}})
	return s
}

func TestIsQuit(t *testing.T) {
	for _, in := range []string{"exit", "QUIT", " q ", "Exit"} {
		assert.True(t, IsQuit(in), in)
	}
	for _, in := range []string{"", "quitting", "no", "qq"} {
		assert.False(t, IsQuit(in), in)
	}
}

func TestQuestions_AsksOutstandingOnly(t *testing.T) {
	s := sessionWithQuestions(
		[]string{"What is your postcode?", "Is there a dam?"},
		map[string]string{"What is your postcode?": "3775"},
	)
	p := testutils.NewPrompter("Yes, 20 megalitres")

	delta, err := Questions(domain.RecordRisk, p).Execute(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, []string{"Is there a dam?"}, p.Prompts())
	require.Len(t, delta.Records, 1)
	assert.Equal(t, map[string]string{"Is there a dam?": "Yes, 20 megalitres"}, delta.Records[0].Answers)

	s.Apply(delta)
	assert.Empty(t, s.Risk.Outstanding())
}

func TestQuestions_NothingOutstandingIsEmptyAndSilent(t *testing.T) {
	n := &recordingNotifier{}
	p := testutils.NewPrompter()
	st := Questions(domain.RecordRisk, p, WithNotifier(n), WithIntro("I need a bit more information"))

	for _, s := range []*domain.Session{
		domain.NewSession("m"),
		sessionWithQuestions([]string{"a?"}, map[string]string{"a?": "yes"}),
	} {
		delta, err := st.Execute(context.Background(), s)
		require.NoError(t, err)
		assert.True(t, delta.IsEmpty())
	}
	assert.Empty(t, p.Prompts())
	assert.Empty(t, n.lines)
}

func TestQuestions_RepromptsOnBlank(t *testing.T) {
	s := sessionWithQuestions([]string{"Postcode?"}, nil)
	p := testutils.NewPrompter("   ", "3775")

	delta, err := Questions(domain.RecordRisk, p).Execute(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "3775", delta.Records[0].Answers["Postcode?"])
	assert.Len(t, p.Prompts(), 2)
	assert.Equal(t, []string{"Please enter an answer."}, p.Messages())
}

func TestQuestions_Quit(t *testing.T) {
	s := sessionWithQuestions([]string{"a?", "b?"}, nil)
	p := testutils.NewPrompter("first", "quit", "never read")

	delta, err := Questions(domain.RecordRisk, p).Execute(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrQuit)
	assert.True(t, delta.IsEmpty())
	assert.Equal(t, 1, p.Remaining())
}

func TestQuestions_SuspendsWithoutInput(t *testing.T) {
	s := sessionWithQuestions([]string{"a?"}, nil)

	_, err := Questions(domain.RecordRisk, testutils.NewPrompter()).Execute(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrSuspended)
}

func TestChoice_PreservesCaseAndRepromptsOnMismatch(t *testing.T) {
	p := testutils.NewPrompter("maybe", "Yes")
	st, err := Choice(domain.RecordRisk, "Continue with plan?", []string{"yes", "no"}, p)
	require.NoError(t, err)

	s := domain.NewSession("m")
	delta, err := st.Execute(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, []string{"Continue with plan? (yes/no)", "Continue with plan? (yes/no)"}, p.Prompts())
	assert.Equal(t, []string{"Invalid choice. Please select from: yes/no"}, p.Messages())

	s.Apply(delta)
	require.NotNil(t, s.Risk.Choice)
	assert.Equal(t, "Yes", s.Risk.Choice.LastChoice)
	assert.Equal(t, []string{"yes", "no"}, s.Risk.Choice.AllowedOptions)
	assert.Equal(t, map[string]string{"Continue with plan?": "Yes"}, s.Risk.Choice.History)
	assert.Equal(t, "yes", strings.ToLower(domain.LastChoiceOf(domain.RecordRisk)(s)))
}

func TestChoice_Quit(t *testing.T) {
	st, err := Choice(domain.RecordDefence, "Stay or leave?", []string{"stay", "leave"}, testutils.NewPrompter("Q"))
	require.NoError(t, err)

	_, err = st.Execute(context.Background(), domain.NewSession("m"))
	assert.ErrorIs(t, err, domain.ErrQuit)
}

func TestChoice_RequiresOptions(t *testing.T) {
	_, err := Choice(domain.RecordRisk, "Pick", nil, testutils.NewPrompter())
	assert.ErrorIs(t, err, ErrNoOptions)
}

var leaveSchema = AssessmentSchema("leave_plan", domain.RecordLeavePlan,
	inference.Field{Name: "where_to_go"},
	inference.Field{Name: "backup_plan"},
)

func TestAssessmentSchema(t *testing.T) {
	s := AssessmentSchema("risk_analysis", domain.RecordRisk)
	require.NoError(t, s.Validate(inference.Reply{FieldClassification: "low"}))
	assert.Equal(t, []string{"low", "high", "unclear"}, s.Fields[0].Enum)

	require.Len(t, leaveSchema.Fields, 6)
	assert.Equal(t, inference.TypeString, leaveSchema.Fields[4].Type)
}

func TestAssessment_MergesReply(t *testing.T) {
	script := inference.NewScript().On("leave_plan", inference.Reply{
		"classification": "DONE",
		"summary":        "Plan complete",
		"narrative":      "Leave early.",
		"questions":      []any{"Who drives?", " "},
		"where_to_go":    "Town hall",
		"backup_plan":    "",
	})
	n := &recordingNotifier{}
	st := Assessment(domain.RecordLeavePlan, "Plan.\n{{context}}", leaveSchema, script,
		WithNotifier(n), WithIntro("Let's plan"), WithProgress("Planning..."))

	s := domain.NewSession("Because")
	delta, err := st.Execute(context.Background(), s)
	require.NoError(t, err)
	s.Apply(delta)

	rec := s.LeavePlan
	require.NotNil(t, rec)
	assert.Equal(t, domain.ClassDone, rec.Classification)
	assert.Equal(t, "Plan complete", rec.Summary)
	assert.Equal(t, "Leave early.", rec.Narrative)
	assert.Equal(t, []string{"Who drives?"}, rec.OpenQuestions)
	assert.Equal(t, map[string]string{"where_to_go": "Town hall"}, rec.Details)

	calls := script.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt(), "User's reason for creating bushfire plan: Because")

	assert.Equal(t, []string{"Let's plan", "Planning..."}, n.lines)
	assert.Equal(t, []domain.RecordKey{domain.RecordLeavePlan}, n.summaries)

	_, err = st.Execute(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"Let's plan", "Planning...", "Planning..."}, n.lines)
}

func TestAssessment_UnknownClassificationIsUnresolved(t *testing.T) {
	schema := AssessmentSchema("risk_analysis", domain.RecordRisk)
	script := inference.NewScript().On("risk_analysis", inference.Reply{"classification": "medium"})
	n := &recordingNotifier{}

	s := domain.NewSession("m")
	delta, err := Assessment(domain.RecordRisk, "t", schema, script, WithNotifier(n)).Execute(context.Background(), s)
	require.NoError(t, err)
	s.Apply(delta)

	assert.Equal(t, domain.Unresolved, s.Risk.Classification)
	assert.Empty(t, n.summaries)
}

func TestAssessment_ReplacesQuestions(t *testing.T) {
	schema := AssessmentSchema("risk_analysis", domain.RecordRisk)
	script := inference.NewScript().On("risk_analysis",
		inference.Reply{"classification": "unclear", "questions": []any{"Postcode?"}},
		inference.Reply{"classification": "low"},
	)
	st := Assessment(domain.RecordRisk, "t", schema, script)
	s := domain.NewSession("m")

	delta, err := st.Execute(context.Background(), s)
	require.NoError(t, err)
	s.Apply(delta)
	assert.Equal(t, []string{"Postcode?"}, s.Risk.Outstanding())

	s.Apply(domain.Delta{Records: []domain.RecordDelta{{Key: domain.RecordRisk, Answers: map[string]string{"Postcode?": "3775"}}}})

	delta, err = st.Execute(context.Background(), s)
	require.NoError(t, err)
	s.Apply(delta)
	assert.Empty(t, s.Risk.OpenQuestions)
	assert.Equal(t, "3775", s.Risk.Answers["Postcode?"])
	assert.Equal(t, domain.ClassLow, s.Risk.Classification)
}

func TestAssessment_CollaboratorFailure(t *testing.T) {
	schema := AssessmentSchema("risk_analysis", domain.RecordRisk)
	boom := errors.New("connection reset")
	script := inference.NewScript().Fail("risk_analysis", boom)

	delta, err := Assessment(domain.RecordRisk, "t", schema, script).Execute(context.Background(), domain.NewSession("m"))
	assert.ErrorIs(t, err, boom)
	assert.True(t, delta.IsEmpty())
}

func TestDocument_SplitsLines(t *testing.T) {
	script := inference.NewScript().On("final_plan", inference.Reply{"document": "# Plan\n\n- **Leave** early"})

	delta, err := Document("Draft.", script).Execute(context.Background(), domain.NewSession("m"))
	require.NoError(t, err)
	assert.Equal(t, []string{"# Plan", "", "- **Leave** early"}, delta.FinalArtifact)
}

func TestDocument_EmptyIsViolation(t *testing.T) {
	script := inference.NewScript().On("final_plan", inference.Reply{"document": "  "})

	_, err := Document("Draft.", script).Execute(context.Background(), domain.NewSession("m"))
	assert.ErrorIs(t, err, inference.ErrSchemaViolation)
}

func TestAssessment_IntroOncePerRun(t *testing.T) {
	script := inference.NewScript().On("leave_plan", inference.Reply{"classification": "more", "narrative": "n", "where_to_go": "Town hall", "backup_plan": "Oval"})
	n := &recordingNotifier{}
	st := Assessment(domain.RecordLeavePlan, "t", leaveSchema, script, WithNotifier(n), WithIntro("Let's plan"))
	ctx := context.Background()

	for _, run := range []*domain.Session{domain.NewSession("first"), domain.NewSession("second")} {
		for i := 0; i < 2; i++ {
			delta, err := st.Execute(ctx, run)
			require.NoError(t, err)
			run.Apply(delta)
		}
	}
	assert.Equal(t, []string{"Let's plan", "Let's plan"}, n.lines)
}

func TestChoice_IntroUntilDecided(t *testing.T) {
	n := &recordingNotifier{}
	p := testutils.NewPrompter("yes", "no", "yes")
	st, err := Choice(domain.RecordRisk, "Continue?", []string{"yes", "no"}, p, WithNotifier(n), WithIntro("Decision time"))
	require.NoError(t, err)
	ctx := context.Background()

	first := domain.NewSession("a")
	delta, err := st.Execute(ctx, first)
	require.NoError(t, err)
	first.Apply(delta)
	_, err = st.Execute(ctx, first)
	require.NoError(t, err)

	_, err = st.Execute(ctx, domain.NewSession("b"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Decision time", "Decision time"}, n.lines)
}
