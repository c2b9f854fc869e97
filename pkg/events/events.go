// Package events defines the event types exchanged over the bus: inbound
// trigger events and the execution lifecycle events the engine emits.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/ninjagenz/automata/pkg/models"
)

type EventType string

// Topic carries every automation event; consumers dispatch on the event_type
// metadata key.
const Topic = "automata.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// TriggerReceivedEvent is published by event producers (API, scheduler)
	// and consumed by the worker, which feeds it to the engine.
	TriggerReceivedEvent EventType = "automation.trigger.received"

	// Engine execution lifecycle events.
	RuleExecutedEvent EventType = "automation.rule.executed"
	RuleFailedEvent   EventType = "automation.rule.failed"

	// Continuation lifecycle events.
	ContinuationScheduledEvent EventType = "automation.continuation.scheduled"
	ContinuationResumedEvent   EventType = "automation.continuation.resumed"
)

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	WorkspaceID string         `json:"workspace_id"`
	WorkerID    string         `json:"worker_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, workspaceID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		WorkspaceID: workspaceID,
	}
}

type TriggerReceived struct {
	BaseEvent

	EventName string                `json:"event_name"`
	Payload   models.TriggerPayload `json:"payload"`
}

func (t TriggerReceived) GetType() EventType {
	return TriggerReceivedEvent
}

type RuleExecuted struct {
	BaseEvent

	RuleID    string             `json:"rule_id"`
	RuleName  string             `json:"rule_name"`
	EventName string             `json:"event_name"`
	Outcome   models.RuleOutcome `json:"outcome"`
}

func (r RuleExecuted) GetType() EventType {
	return RuleExecutedEvent
}

type RuleFailed struct {
	BaseEvent

	RuleID    string             `json:"rule_id"`
	RuleName  string             `json:"rule_name"`
	EventName string             `json:"event_name"`
	Outcome   models.RuleOutcome `json:"outcome"`
	Error     string             `json:"error"`
}

func (r RuleFailed) GetType() EventType {
	return RuleFailedEvent
}

type ContinuationScheduled struct {
	BaseEvent

	ContinuationID string    `json:"continuation_id"`
	RuleID         string    `json:"rule_id"`
	ResumeAt       time.Time `json:"resume_at"`
}

func (c ContinuationScheduled) GetType() EventType {
	return ContinuationScheduledEvent
}

type ContinuationResumed struct {
	BaseEvent

	ContinuationID string             `json:"continuation_id"`
	RuleID         string             `json:"rule_id"`
	Outcome        models.RuleOutcome `json:"outcome"`
}

func (c ContinuationResumed) GetType() EventType {
	return ContinuationResumedEvent
}
