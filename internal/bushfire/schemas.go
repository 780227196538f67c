package bushfire

import (
	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/aretw0/firebreak/pkg/inference"
	"github.com/aretw0/firebreak/pkg/stages"
)

// Reply schemas, one per inference stage.
var (
	RiskSchema    = stages.AssessmentSchema("risk_analysis", domain.RecordRisk)
	DefenceSchema = stages.AssessmentSchema("defence_analysis", domain.RecordDefence)

	LeavePlanSchema = stages.AssessmentSchema("leave_plan", domain.RecordLeavePlan,
		section("when_to_leave", "Trigger conditions for leaving."),
		section("where_to_go", "Safe destinations with addresses and contacts."),
		section("how_to_get_there", "Primary and alternative routes."),
		section("what_to_take", "Prioritised packing list."),
		section("who_to_tell", "Who to notify and when."),
		section("backup_plan", "What to do if leaving fails."),
	)

	StayPlanSchema = stages.AssessmentSchema("stay_plan", domain.RecordStayPlan,
		section("equipment", "Equipment on hand and still needed."),
		section("where_to_start", "Cues that activate the plan."),
		section("before_the_fire", "Preparation activities."),
		section("during_the_fire", "Active defence procedures."),
		section("after_the_fire", "Post-fire checks and recovery."),
		section("who_can_help", "Available people and support."),
		section("peoples_roles", "Role assignments."),
		section("backup_plan", "Shelter options if defence fails."),
	)
)

func section(name, desc string) inference.Field {
	return inference.Field{Name: name, Type: inference.TypeString, Description: desc}
}
