// Package web provides HTTP request and response types for the automation API.
package web

import "github.com/ninjagenz/automata/pkg/models"

// TriggerRequest represents the request body for firing a trigger event.
type TriggerRequest struct {
	EventName string                `json:"event_name" validate:"required"`
	Payload   models.TriggerPayload `json:"payload"    validate:"required"`
}

// CreateRuleRequest represents the request body for creating a new rule.
type CreateRuleRequest struct {
	Name         string              `json:"name"          validate:"required,min=3"`
	TriggerEvent string              `json:"trigger_event" validate:"required"`
	IsActive     *bool               `json:"is_active"`
	Filters      []models.Filter     `json:"filters,omitempty"`
	ActionChain  []models.ActionStep `json:"action_chain"  validate:"required,min=1,dive"`
}

// UpdateRuleRequest represents the request body for updating an existing rule.
// All fields are optional to support partial updates.
type UpdateRuleRequest struct {
	Name         *string             `json:"name,omitempty"          validate:"omitempty,min=3"`
	TriggerEvent *string             `json:"trigger_event,omitempty" validate:"omitempty,min=1"`
	IsActive     *bool               `json:"is_active,omitempty"`
	Filters      []models.Filter     `json:"filters,omitempty"`
	ActionChain  []models.ActionStep `json:"action_chain,omitempty"  validate:"omitempty,min=1,dive"`
}
