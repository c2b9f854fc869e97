package models

import "time"

// Continuation is the serializable remainder of an action chain after a delay
// step: rule identity, the index of the next step to run, and a snapshot of
// the trigger payload. It is handed to the delayed-execution queue and picked
// up by a worker once ResumeAt has passed.
type Continuation struct {
	ID          string         `json:"id"`
	RuleID      string         `json:"rule_id"`
	RuleName    string         `json:"rule_name"`
	WorkspaceID string         `json:"workspace_id"`
	EventName   string         `json:"event_name"`
	NextStep    int            `json:"next_step"`
	Payload     TriggerPayload `json:"payload"`
	ResumeAt    time.Time      `json:"resume_at"`
}
