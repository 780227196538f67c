package bushfire

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/dsl"
	"github.com/aretw0/firebreak/pkg/ports"
	"github.com/aretw0/firebreak/pkg/stages"
)

// Stage names.
const (
	ClassifyRisk          = "classify_risk"
	AskRiskQuestions      = "ask_risk_questions"
	ContinueWithPlan      = "continue_with_plan"
	AssessDefence         = "assess_defence"
	AskDefenceQuestions   = "ask_defence_questions"
	AskStrategy           = "ask_strategy"
	CreateLeavePlan       = "create_leave_plan"
	AskLeavePlanQuestions = "ask_leave_plan_questions"
	CreateStayPlan        = "create_stay_plan"
	AskStayPlanQuestions  = "ask_stay_plan_questions"
	ShowPlan              = "show_plan"
)

// Choice prompts.
const (
	ContinuePrompt = "Continue with plan?"
	StrategyPrompt = "Do you want to create a leave early or stay and defend plan?"
)

// Deps are the collaborators the graph's stages need.
type Deps struct {
	Inferer  ports.Inferer
	Prompter ports.Prompter
	Notifier stages.Notifier

	// Now dates the final plan. Defaults to time.Now.
	Now func() time.Time
}

// Build assembles the bushfire planning graph.
func Build(deps Deps) (*dsl.Graph, error) {
	if deps.Inferer == nil || deps.Prompter == nil {
		return nil, fmt.Errorf("bushfire graph needs an inferer and a prompter")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	notify := stages.WithNotifier(deps.Notifier)
	askMore := stages.WithProgress("I need a bit more information")
	decide := stages.WithProgress("I need you to make a decision.")

	proceed, err := stages.Choice(domain.RecordRisk, ContinuePrompt, []string{"yes", "no"}, deps.Prompter, notify, decide)
	if err != nil {
		return nil, err
	}
	strategy, err := stages.Choice(domain.RecordDefence, StrategyPrompt, []string{"leave", "stay"}, deps.Prompter, notify, decide)
	if err != nil {
		return nil, err
	}

	b := dsl.New().Entry(ClassifyRisk)

	b.Add(ClassifyRisk).
		Inference(stages.Assessment(domain.RecordRisk, riskTemplate, RiskSchema, deps.Inferer, notify,
			stages.WithIntro("Let's assess the risk first"),
			stages.WithProgress("Assessing Risk..."))).
		Branch(domain.ClassificationOf(domain.RecordRisk), map[string]string{
			"unclear": AskRiskQuestions,
			"low":     ContinueWithPlan,
			"high":    ContinueWithPlan,
		})
	b.Add(AskRiskQuestions).
		Interaction(stages.Questions(domain.RecordRisk, deps.Prompter, notify, askMore)).
		Go(ClassifyRisk)

	b.Add(ContinueWithPlan).
		Interaction(proceed).
		Branch(domain.LastChoiceOf(domain.RecordRisk), map[string]string{
			"yes": AssessDefence,
			"no":  domain.End,
		})

	b.Add(AssessDefence).
		Inference(stages.Assessment(domain.RecordDefence, defenceTemplate, DefenceSchema, deps.Inferer, notify,
			stages.WithIntro("Let's assess your capability of defending your property against bushfire"),
			stages.WithProgress("Assessing stay and defend capability..."))).
		Branch(domain.ClassificationOf(domain.RecordDefence), map[string]string{
			"unclear": AskDefenceQuestions,
			"low":     AskStrategy,
			"high":    AskStrategy,
		})
	b.Add(AskDefenceQuestions).
		Interaction(stages.Questions(domain.RecordDefence, deps.Prompter, notify, askMore)).
		Go(AssessDefence)

	b.Add(AskStrategy).
		Interaction(strategy).
		Branch(domain.LastChoiceOf(domain.RecordDefence), map[string]string{
			"stay":  CreateStayPlan,
			"leave": CreateLeavePlan,
		})

	b.Add(CreateLeavePlan).
		Inference(stages.Assessment(domain.RecordLeavePlan, leavePlanTemplate, LeavePlanSchema, deps.Inferer, notify,
			stages.WithIntro("Let's create you a leave plan"),
			stages.WithProgress("Creating leave plan..."))).
		Branch(domain.ClassificationOf(domain.RecordLeavePlan), map[string]string{
			"more": AskLeavePlanQuestions,
			"done": ShowPlan,
		})
	b.Add(AskLeavePlanQuestions).
		Interaction(stages.Questions(domain.RecordLeavePlan, deps.Prompter, notify, askMore)).
		Go(CreateLeavePlan)

	b.Add(CreateStayPlan).
		Inference(stages.Assessment(domain.RecordStayPlan, stayPlanTemplate, StayPlanSchema, deps.Inferer, notify,
			stages.WithIntro("Let's create you a stay and defend plan"),
			stages.WithProgress("Creating stay and defend plan..."))).
		Branch(domain.ClassificationOf(domain.RecordStayPlan), map[string]string{
			"more": AskStayPlanQuestions,
			"done": ShowPlan,
		})
	b.Add(AskStayPlanQuestions).
		Interaction(stages.Questions(domain.RecordStayPlan, deps.Prompter, notify, askMore)).
		Go(CreateStayPlan)

	plan := strings.ReplaceAll(planTemplate, "{{date}}", deps.Now().Format("2 January 2006"))
	b.Add(ShowPlan).
		Inference(stages.Document(plan, deps.Inferer, notify, stages.WithIntro("Drafting your plan"))).
		Terminal()

	return b.Build()
}

// Initial is the delta a new run starts from.
func Initial(motivation string) domain.Delta {
	return domain.Delta{
		Motivation: motivation,
		Transcript: []domain.Message{{Role: domain.RoleUser, Content: ConsultantBrief}},
	}
}
