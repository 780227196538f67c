package runtime_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/firebreak/internal/runtime"
	"github.com/aretw0/firebreak/internal/testutils"
	"github.com/aretw0/firebreak/pkg/adapters/memory"
	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/dsl"
	"github.com/aretw0/firebreak/pkg/inference"
	"github.com/aretw0/firebreak/pkg/ports"
	"github.com/aretw0/firebreak/pkg/stages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var riskSchema = stages.AssessmentSchema("risk_analysis", domain.RecordRisk)

// riskGraph: classify -> (unclear) ask -> classify; (low|high) -> show -> end.
func riskGraph(t *testing.T, inferer ports.Inferer, p ports.Prompter) *dsl.Graph {
	t.Helper()
	b := dsl.New().Entry("classify_risk")
	b.Add("classify_risk").
		Inference(stages.Assessment(domain.RecordRisk, "Assess.\n{{context}}", riskSchema, inferer)).
		Branch(domain.ClassificationOf(domain.RecordRisk), map[string]string{
			"unclear": "ask_risk_questions",
			"low":     "show_plan",
			"high":    "show_plan",
		})
	b.Add("ask_risk_questions").
		Interaction(stages.Questions(domain.RecordRisk, p)).
		Go("classify_risk")
	b.Add("show_plan").
		Inference(stages.Document("Draft.\n{{context}}", inferer)).
		Terminal()

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func choiceGraph(t *testing.T, inferer ports.Inferer, p ports.Prompter) *dsl.Graph {
	t.Helper()
	choose, err := stages.Choice(domain.RecordRisk, "Continue with plan?", []string{"yes", "no"}, p)
	require.NoError(t, err)

	b := dsl.New().Entry("continue_with_plan")
	b.Add("continue_with_plan").
		Interaction(choose).
		Branch(domain.LastChoiceOf(domain.RecordRisk), map[string]string{
			"yes": "show_plan",
			"no":  domain.End,
		})
	b.Add("show_plan").
		Inference(stages.Document("Draft.", inferer)).
		Terminal()

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func start() domain.Delta {
	return domain.Delta{
		Motivation: "We live next to a national park",
		Transcript: []domain.Message{{Role: domain.RoleSystem, Content: "You are a bushfire consultant."}},
	}
}

var plan = inference.Reply{"document": "# Bushfire Plan\n\n- **Leave** on catastrophic days"}

func TestEngine_UnclearAsksQuestionsThenReassesses(t *testing.T) {
	script := inference.NewScript().
		On("risk_analysis",
			inference.Reply{"classification": "unclear", "questions": []any{"What is your postcode?"}},
			inference.Reply{"classification": "High", "narrative": "Heavy fuel load"},
		).
		On("final_plan", plan)
	p := testutils.NewPrompter("3775")
	store := memory.NewStore()

	engine := runtime.NewEngine(riskGraph(t, script, p), store)
	cp, err := engine.Run(context.Background(), "run-1", start())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, cp.Status)
	assert.Equal(t, domain.End, cp.Next)
	assert.Equal(t, 4, cp.Steps)
	assert.Equal(t, []string{"What is your postcode?"}, p.Prompts())

	risk := cp.Session.Risk
	require.NotNil(t, risk)
	assert.Equal(t, domain.ClassHigh, risk.Classification)
	assert.Equal(t, "3775", risk.Answers["What is your postcode?"])
	assert.Empty(t, risk.Outstanding())
	assert.Equal(t, []string{"# Bushfire Plan", "", "- **Leave** on catastrophic days"}, cp.Session.FinalArtifact)

	calls := script.Calls()
	require.Len(t, calls, 3)
	second := calls[1].Context
	assert.Contains(t, second, "- What is your postcode?: 3775")
	assert.NotContains(t, second, "Open questions")

	loaded, err := store.Load(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, cp.Session.FinalArtifact, loaded.Session.FinalArtifact)
	assert.Equal(t, domain.StatusCompleted, loaded.Status)
}

func TestEngine_UnrecognizedClassificationSelfLoops(t *testing.T) {
	script := inference.NewScript().
		On("risk_analysis",
			inference.Reply{"classification": "medium"},
			inference.Reply{"classification": ""},
			inference.Reply{"classification": "LOW"},
		).
		On("final_plan", plan)

	var mu sync.Mutex
	var routes []domain.RouteEvent
	hooks := domain.LifecycleHooks{
		OnRoute: func(ctx context.Context, e *domain.RouteEvent) {
			mu.Lock()
			defer mu.Unlock()
			routes = append(routes, *e)
		},
	}

	engine := runtime.NewEngine(riskGraph(t, script, testutils.NewPrompter()), memory.NewStore(), runtime.WithLifecycleHooks(hooks))
	cp, err := engine.Run(context.Background(), "run-loop", start())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, cp.Status)
	assert.Equal(t, 3, script.CallsFor("risk_analysis"))

	require.Len(t, routes, 4)
	for _, r := range routes[:2] {
		assert.Equal(t, "classify_risk", r.To)
		assert.True(t, r.Fallback)
	}
	assert.Equal(t, "show_plan", routes[2].To)
	assert.False(t, routes[2].Fallback)
	assert.Equal(t, domain.End, routes[3].To)
}

func TestEngine_ChoicePreservesCaseAndRoutesInsensitively(t *testing.T) {
	script := inference.NewScript().On("final_plan", plan)
	p := testutils.NewPrompter("Yes")

	engine := runtime.NewEngine(choiceGraph(t, script, p), memory.NewStore())
	cp, err := engine.Run(context.Background(), "run-choice", start())
	require.NoError(t, err)

	assert.Equal(t, "Yes", cp.Session.Risk.Choice.LastChoice)
	assert.Equal(t, 1, script.CallsFor("final_plan"))
	assert.NotEmpty(t, cp.Session.FinalArtifact)
}

func TestEngine_ChoiceNoEndsWithoutArtifact(t *testing.T) {
	script := inference.NewScript()
	p := testutils.NewPrompter("NO")

	engine := runtime.NewEngine(choiceGraph(t, script, p), memory.NewStore())
	cp, err := engine.Run(context.Background(), "run-no", start())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, cp.Status)
	assert.Nil(t, cp.Session.FinalArtifact)
	assert.Empty(t, script.Calls())
}

func TestEngine_QuitStopsWithoutArtifact(t *testing.T) {
	script := inference.NewScript().
		On("risk_analysis", inference.Reply{"classification": "unclear", "questions": []any{"What is your postcode?"}}).
		On("final_plan", plan)
	p := testutils.NewPrompter("quit")
	store := memory.NewStore()

	engine := runtime.NewEngine(riskGraph(t, script, p), store)
	cp, err := engine.Run(context.Background(), "run-quit", start())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusQuit, cp.Status)
	assert.Nil(t, cp.Session.FinalArtifact)
	assert.Zero(t, script.CallsFor("final_plan"))

	loaded, err := store.Load(context.Background(), "run-quit")
	require.NoError(t, err)
	assert.Equal(t, "ask_risk_questions", loaded.Next)
	assert.Equal(t, domain.StatusQuit, loaded.Status)
	assert.Equal(t, []string{"What is your postcode?"}, loaded.Session.Risk.Outstanding())
	assert.Empty(t, loaded.Session.Risk.Answers)
}

func TestEngine_FailureThenResumeRetriesSameStage(t *testing.T) {
	script := inference.NewScript().
		Fail("risk_analysis", errors.New("service unreachable")).
		On("risk_analysis", inference.Reply{"classification": "low"}).
		On("final_plan", plan)
	store := memory.NewStore()
	engine := runtime.NewEngine(riskGraph(t, script, testutils.NewPrompter()), store)

	cp, err := engine.Run(context.Background(), "run-fail", start())
	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "classify_risk", stageErr.Stage)
	assert.Equal(t, domain.StatusFailed, cp.Status)
	assert.Contains(t, cp.LastError, "service unreachable")

	loaded, err := store.Load(context.Background(), "run-fail")
	require.NoError(t, err)
	assert.Equal(t, "classify_risk", loaded.Next)
	assert.Nil(t, loaded.Session.Risk)
	assert.Equal(t, "We live next to a national park", loaded.Session.Motivation)

	cp, err = engine.Resume(context.Background(), "run-fail")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, cp.Status)
	assert.Empty(t, cp.LastError)
	assert.Equal(t, 2, script.CallsFor("risk_analysis"))
}

func TestEngine_SuspendThenResume(t *testing.T) {
	script := inference.NewScript().
		On("risk_analysis",
			inference.Reply{"classification": "unclear", "questions": []any{"Postcode?", "Slope?"}},
			inference.Reply{"classification": "low"},
		).
		On("final_plan", plan)
	p := testutils.NewPrompter("3775")
	store := memory.NewStore()
	engine := runtime.NewEngine(riskGraph(t, script, p), store)

	cp, err := engine.Run(context.Background(), "run-suspend", start())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuspended, cp.Status)
	assert.Equal(t, "ask_risk_questions", cp.Next)
	assert.Empty(t, cp.Session.Risk.Answers, "partial answers are not merged")

	p.Feed("3775", "Steep")
	cp, err = engine.Resume(context.Background(), "run-suspend")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, cp.Status)
	assert.Equal(t, map[string]string{"Postcode?": "3775", "Slope?": "Steep"}, cp.Session.Risk.Answers)
}

func TestEngine_VisitCap(t *testing.T) {
	script := inference.NewScript().On("risk_analysis", inference.Reply{"classification": "unclear"})
	store := memory.NewStore()
	engine := runtime.NewEngine(riskGraph(t, script, testutils.NewPrompter()), store, runtime.WithMaxVisits(3))

	cp, err := engine.Run(context.Background(), "run-cap", start())
	assert.ErrorIs(t, err, domain.ErrLoopLimit)
	assert.Equal(t, domain.StatusFailed, cp.Status)
	assert.Equal(t, 3, script.CallsFor("risk_analysis"))

	loaded, err := store.Load(context.Background(), "run-cap")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, loaded.Status)
	assert.True(t, strings.Contains(loaded.LastError, "visit limit"))
}

func TestEngine_StagesReceivePrivateCopy(t *testing.T) {
	b := dsl.New().Entry("meddle")
	b.Add("meddle").
		Inference(ports.StageFunc(func(ctx context.Context, s *domain.Session) (domain.Delta, error) {
			s.Motivation = "hijacked"
			s.Transcript = nil
			return domain.Delta{Transcript: []domain.Message{{Role: domain.RoleAssistant, Content: "ok"}}}, nil
		})).
		Terminal()
	g, err := b.Build()
	require.NoError(t, err)

	cp, err := runtime.NewEngine(g, memory.NewStore()).Run(context.Background(), "run-copy", start())
	require.NoError(t, err)
	assert.Equal(t, "We live next to a national park", cp.Session.Motivation)
	assert.Len(t, cp.Session.Transcript, 2)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	script := inference.NewScript().On("final_plan", plan)
	var events []string
	hooks := domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			events = append(events, "enter:"+e.Stage)
		},
		OnStageLeave: func(ctx context.Context, e *domain.StageEvent) {
			events = append(events, "leave:"+e.Stage)
		},
		OnRoute: func(ctx context.Context, e *domain.RouteEvent) {
			events = append(events, "route:"+e.To)
		},
		OnCheckpoint: func(ctx context.Context, e *domain.CheckpointEvent) {
			events = append(events, "checkpoint:"+e.Next+":"+string(e.Status))
		},
	}

	engine := runtime.NewEngine(choiceGraph(t, script, testutils.NewPrompter("yes")), memory.NewStore(), runtime.WithLifecycleHooks(hooks))
	_, err := engine.Run(context.Background(), "run-hooks", start())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"checkpoint:continue_with_plan:active",
		"enter:continue_with_plan",
		"leave:continue_with_plan",
		"route:show_plan",
		"checkpoint:show_plan:active",
		"enter:show_plan",
		"leave:show_plan",
		"route:" + domain.End,
		"checkpoint:" + domain.End + ":completed",
	}, events)
}

func TestEngine_RunRejectsExistingID(t *testing.T) {
	store := memory.NewStore()
	engine := runtime.NewEngine(choiceGraph(t, inference.NewScript(), testutils.NewPrompter("no")), store)

	_, err := engine.Run(context.Background(), "dup", start())
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), "dup", start())
	assert.ErrorIs(t, err, domain.ErrRunExists)
}

func TestEngine_ResumeUnknownRun(t *testing.T) {
	engine := runtime.NewEngine(choiceGraph(t, inference.NewScript(), testutils.NewPrompter()), memory.NewStore())
	_, err := engine.Resume(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestEngine_ResumeCompletedIsNoop(t *testing.T) {
	script := inference.NewScript()
	engine := runtime.NewEngine(choiceGraph(t, script, testutils.NewPrompter("no")), memory.NewStore())

	_, err := engine.Run(context.Background(), "done", start())
	require.NoError(t, err)

	cp, err := engine.Resume(context.Background(), "done")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, cp.Status)
	assert.Equal(t, 1, cp.Steps)
}

func TestEngine_CancelledContextParksRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := memory.NewStore()
	engine := runtime.NewEngine(choiceGraph(t, inference.NewScript(), testutils.NewPrompter("yes")), store)

	cp, err := engine.Run(ctx, "run-cancel", start())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.StatusSuspended, cp.Status)

	loaded, err := store.Load(context.Background(), "run-cancel")
	require.NoError(t, err)
	assert.Equal(t, "continue_with_plan", loaded.Next)
}
