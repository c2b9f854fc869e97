package models

// StepStatus is the terminal state of one executed action step.
type StepStatus string

const (
	StepStatusSucceeded StepStatus = "succeeded"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
	StepStatusDeferred  StepStatus = "deferred"
)

// StepOutcome records what happened to a single action step.
type StepOutcome struct {
	Step   int        `json:"step"`
	Type   ActionType `json:"type"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// RuleOutcome records the execution of one matched rule's action chain.
// Deferred marks a chain whose remainder was handed off to the delayed
// execution queue. Error is set when the rule never reached its chain, such
// as a filter predicate that could not be evaluated.
type RuleOutcome struct {
	RuleID   string        `json:"rule_id"`
	RuleName string        `json:"rule_name"`
	Steps    []StepOutcome `json:"steps,omitempty"`
	Deferred bool          `json:"deferred,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// TriggerResult is the structured outcome of one trigger call. Matched counts
// rules selected for execution; a rule whose actions later fail still counts
// as matched, with the failures recorded in its outcome.
type TriggerResult struct {
	Matched  int           `json:"matched"`
	Rules    []string      `json:"rules,omitempty"`
	Outcomes []RuleOutcome `json:"outcomes,omitempty"`
}

// FailedSteps counts step-level failures across all rule outcomes.
func (r *TriggerResult) FailedSteps() int {
	count := 0

	for _, outcome := range r.Outcomes {
		for _, step := range outcome.Steps {
			if step.Status == StepStatusFailed {
				count++
			}
		}
	}

	return count
}
