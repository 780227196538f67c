package domain

import "strings"

// Classification is the discrete outcome an inference stage records.
// The zero value means the outcome has not been resolved yet.
type Classification string

const (
	Unresolved Classification = ""

	ClassLow     Classification = "low"
	ClassHigh    Classification = "high"
	ClassUnclear Classification = "unclear"

	ClassMore Classification = "more"
	ClassDone Classification = "done"
)

// ClassificationSet is the closed set of legal outcomes for one record.
type ClassificationSet []Classification

var (
	// LevelSet applies to the risk and defence assessments.
	LevelSet = ClassificationSet{ClassLow, ClassHigh, ClassUnclear}
	// PlanSet applies to the leave and stay plans.
	PlanSet = ClassificationSet{ClassMore, ClassDone}
)

// ClassificationsFor returns the legal set for a record.
func ClassificationsFor(key RecordKey) ClassificationSet {
	switch key {
	case RecordRisk, RecordDefence:
		return LevelSet
	case RecordLeavePlan, RecordStayPlan:
		return PlanSet
	}
	return nil
}

// Normalize maps a raw value onto the set, case-insensitively.
// Anything outside the set, including the empty string, yields Unresolved.
func (cs ClassificationSet) Normalize(raw string) Classification {
	clean := strings.ToLower(strings.TrimSpace(raw))
	if clean == "" {
		return Unresolved
	}
	for _, c := range cs {
		if string(c) == clean {
			return c
		}
	}
	return Unresolved
}

// Strings returns the set as plain strings, e.g. for schema enums.
func (cs ClassificationSet) Strings() []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}
