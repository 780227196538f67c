package domain

// End is the terminal marker used as a stage pointer once a run has finished.
const End = "__end__"

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// RecordKey identifies one of the statically declared assessment records of a Session.
type RecordKey string

const (
	RecordRisk      RecordKey = "risk_assessment"
	RecordDefence   RecordKey = "defence_assessment"
	RecordLeavePlan RecordKey = "leave_plan"
	RecordStayPlan  RecordKey = "stay_plan"
)

// RecordKeys lists every record in the fixed order used for rendering and iteration.
var RecordKeys = []RecordKey{RecordRisk, RecordDefence, RecordLeavePlan, RecordStayPlan}

// Valid reports whether k names a declared record.
func (k RecordKey) Valid() bool {
	switch k {
	case RecordRisk, RecordDefence, RecordLeavePlan, RecordStayPlan:
		return true
	}
	return false
}

// Title is the human label used in briefings.
func (k RecordKey) Title() string {
	switch k {
	case RecordRisk:
		return "Risk Assessment"
	case RecordDefence:
		return "Defence Assessment"
	case RecordLeavePlan:
		return "Leave Plan"
	case RecordStayPlan:
		return "Stay Plan"
	}
	return string(k)
}
