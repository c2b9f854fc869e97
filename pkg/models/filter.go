package models

// FilterOperator identifies a comparison applied by a rule filter.
type FilterOperator string

const (
	OperatorEquals      FilterOperator = "equals"
	OperatorNotEquals   FilterOperator = "not_equals"
	OperatorContains    FilterOperator = "contains"
	OperatorNotContains FilterOperator = "not_contains"
	OperatorExists      FilterOperator = "exists"
)

// Filter is one predicate attached to a rule. A rule's filters combine with
// logical AND; a rule with no filters always passes.
type Filter struct {
	Field    string         `json:"field"    validate:"required"`
	Operator FilterOperator `json:"operator" validate:"required"`
	Value    any            `json:"value,omitempty"`
}
