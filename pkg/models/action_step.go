package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ActionType discriminates the variants of an action step.
type ActionType string

const (
	ActionSendNotification ActionType = "send_notification"
	ActionDelay            ActionType = "delay"
	ActionUpdateRecord     ActionType = "update_record"
)

// ActionStep is one unit of work inside a rule's chain. Config is the
// type-specific parameter bag as stored; the typed Decode* helpers give each
// variant its concrete configuration. Steps execute strictly in chain order.
type ActionStep struct {
	Step   int            `json:"step"`
	Type   ActionType     `json:"type" validate:"required"`
	Config map[string]any `json:"config"`
}

// NotificationConfig is the send_notification variant configuration.
type NotificationConfig struct {
	Template string `json:"template"`
	// Recipient is a dotted payload path; defaults to user.email.
	Recipient string `json:"recipient,omitempty"`
}

// DelayConfig is the delay variant configuration.
type DelayConfig struct {
	Duration string `json:"duration"`
}

// UpdateRecordConfig is the update_record variant configuration. The record id
// is taken from the payload at <record_kind>.id.
type UpdateRecordConfig struct {
	RecordKind string         `json:"record_kind"`
	Patch      map[string]any `json:"patch"`
}

var errMissingTemplate = errors.New("notification config requires a template")

// DecodeNotificationConfig extracts the typed configuration of a
// send_notification step.
func (s ActionStep) DecodeNotificationConfig() (NotificationConfig, error) {
	cfg := NotificationConfig{Recipient: "user.email"}

	template, _ := s.Config["template"].(string)
	if template == "" {
		return cfg, errMissingTemplate
	}

	cfg.Template = template

	if recipient, ok := s.Config["recipient"].(string); ok && recipient != "" {
		cfg.Recipient = recipient
	}

	return cfg, nil
}

// DecodeDelayConfig extracts and validates the typed configuration of a delay
// step, returning the parsed pause duration.
func (s ActionStep) DecodeDelayConfig() (DelayConfig, time.Duration, error) {
	raw, _ := s.Config["duration"].(string)

	cfg := DelayConfig{Duration: raw}

	d, err := ParseDuration(raw)
	if err != nil {
		return cfg, 0, err
	}

	return cfg, d, nil
}

// DecodeUpdateRecordConfig extracts the typed configuration of an
// update_record step.
func (s ActionStep) DecodeUpdateRecordConfig() (UpdateRecordConfig, error) {
	cfg := UpdateRecordConfig{RecordKind: "task"}

	if kind, ok := s.Config["record_kind"].(string); ok && kind != "" {
		cfg.RecordKind = kind
	}

	patch, ok := s.Config["patch"].(map[string]any)
	if !ok || len(patch) == 0 {
		return cfg, errors.New("update_record config requires a non-empty patch")
	}

	cfg.Patch = patch

	return cfg, nil
}

// ParseDuration parses a duration expression as written by rule authors.
// Accepts everything time.ParseDuration does plus a "d" suffix for days
// ("2d" is 48h).
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty duration expression")
	}

	if strings.HasSuffix(raw, "d") {
		days, err := strconv.ParseFloat(strings.TrimSuffix(raw, "d"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration expression %q: %w", raw, err)
		}

		if days < 0 {
			return 0, fmt.Errorf("negative duration expression %q", raw)
		}

		return time.Duration(days * 24 * float64(time.Hour)), nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration expression %q: %w", raw, err)
	}

	if d < 0 {
		return 0, fmt.Errorf("negative duration expression %q", raw)
	}

	return d, nil
}
