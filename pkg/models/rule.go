// Package models defines the core domain models for the automation rule engine.
package models

import "time"

// Rule is a declarative mapping from a trigger event to an ordered action
// chain, scoped to a single workspace. Rules are authored through the API and
// read-only from the engine's perspective.
type Rule struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"          validate:"required,min=3"`
	WorkspaceID  string       `json:"workspace_id"  validate:"required"`
	TriggerEvent string       `json:"trigger_event" validate:"required"`
	IsActive     bool         `json:"is_active"`
	Filters      []Filter     `json:"filters,omitempty"`
	ActionChain  []ActionStep `json:"action_chain"  validate:"required,min=1,dive"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty"`
}

// Eligible reports whether the rule may run for the given workspace and event.
// All three gates must hold: active flag, exact event match, and tenant match.
func (r *Rule) Eligible(workspaceID, eventName string) bool {
	return r.IsActive && r.TriggerEvent == eventName && r.WorkspaceID == workspaceID
}
