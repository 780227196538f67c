package bushfire

import (
	"github.com/aretw0/firebreak/pkg/inference"
)

// Offline returns a scripted inferer that walks the whole graph without a
// model. Each assessment asks one round of questions before resolving.
func Offline() *inference.Script {
	return inference.NewScript().
		On(RiskSchema.Name,
			inference.Reply{
				"classification": "unclear",
				"questions": []any{
					"What is your property postcode and nearest major town?",
					"Describe the vegetation within 100 metres of your home.",
				},
			},
			inference.Reply{
				"classification": "high",
				"summary":        "Your property has a high bushfire risk.",
				"narrative":      "Dense bush close to the home and a single access road leave little margin on bad fire days.",
				"questions":      []any{},
			},
		).
		On(DefenceSchema.Name,
			inference.Reply{
				"classification": "unclear",
				"questions":      []any{"Do you have an independent water supply and a petrol or diesel pump?"},
			},
			inference.Reply{
				"classification": "low",
				"summary":        "Your capability to defend is low.",
				"narrative":      "Without independent water and firefighting equipment, leaving early is the safest option.",
				"questions":      []any{},
			},
		).
		On(LeavePlanSchema.Name,
			inference.Reply{
				"classification": "more",
				"questions":      []any{"Where will you go, and how will you get there?"},
			},
			inference.Reply{
				"classification":   "done",
				"summary":          "Your leave plan is complete.",
				"questions":        []any{},
				"when_to_leave":    "Leave the night before on Extreme or Catastrophic days.",
				"where_to_go":      "Family in the nearest major town.",
				"how_to_get_there": "Main road towards town; the back road as an alternative.",
				"what_to_take":     "Documents, medications, phone chargers, pets.",
				"who_to_tell":      "Family and neighbours before leaving.",
				"backup_plan":      "Shelter at the local neighbourhood safer place.",
			},
		).
		On(StayPlanSchema.Name,
			inference.Reply{
				"classification": "more",
				"questions":      []any{"What firefighting equipment do you already own?"},
			},
			inference.Reply{
				"classification":  "done",
				"summary":         "Your stay and defend plan is complete.",
				"questions":       []any{},
				"equipment":       "Pump, hoses, protective clothing.",
				"where_to_start":  "Activate on Severe fire danger or a Watch and Act alert.",
				"before_the_fire": "Clear gutters and move flammables away from the house.",
				"during_the_fire": "Shelter inside as the front passes, patrol for embers afterwards.",
				"after_the_fire":  "Check roof space and surroundings for spot fires.",
				"who_can_help":    "Two adults able to defend.",
				"peoples_roles":   "One on hoses, one patrolling.",
				"backup_plan":     "Retreat to the fire-safe room.",
			},
		).
		On("final_plan", inference.Reply{"document": offlinePlan})
}

const offlinePlan = `# Bushfire Survival Plan

## Risk Summary
Dense bush close to the home and a single access road.

## Risk Level
**High**

## Capability to Defend
**Low**

## Decision
**Leave early.**

## When to Leave
- Leave the night before on **Extreme** or **Catastrophic** days.

## Backup Plan
- Shelter at the local neighbourhood safer place.`
