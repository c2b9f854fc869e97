package models

// RuleRun is the per-rule execution context handed to each action step. The
// payload is a private clone for this rule; actions may read it freely but
// mutations are never visible to sibling rules.
type RuleRun struct {
	RuleID      string         `json:"rule_id"`
	RuleName    string         `json:"rule_name"`
	WorkspaceID string         `json:"workspace_id"`
	EventName   string         `json:"event_name"`
	StepIndex   int            `json:"step_index"`
	Payload     TriggerPayload `json:"payload"`
}
