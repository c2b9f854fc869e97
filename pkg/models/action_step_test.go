package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNotificationConfig(t *testing.T) {
	step := ActionStep{Type: ActionSendNotification, Config: map[string]any{
		"template": "Hi {{user.name}}",
	}}

	cfg, err := step.DecodeNotificationConfig()
	require.NoError(t, err)
	assert.Equal(t, "Hi {{user.name}}", cfg.Template)
	assert.Equal(t, "user.email", cfg.Recipient)

	step.Config["recipient"] = "task.assignee_email"

	cfg, err = step.DecodeNotificationConfig()
	require.NoError(t, err)
	assert.Equal(t, "task.assignee_email", cfg.Recipient)
}

func TestDecodeNotificationConfig_MissingTemplate(t *testing.T) {
	step := ActionStep{Type: ActionSendNotification, Config: map[string]any{}}

	_, err := step.DecodeNotificationConfig()
	assert.Error(t, err)
}

func TestDecodeDelayConfig(t *testing.T) {
	step := ActionStep{Type: ActionDelay, Config: map[string]any{"duration": "5m"}}

	cfg, d, err := step.DecodeDelayConfig()
	require.NoError(t, err)
	assert.Equal(t, "5m", cfg.Duration)
	assert.Equal(t, 5*time.Minute, d)

	step.Config["duration"] = "nonsense"

	_, _, err = step.DecodeDelayConfig()
	assert.Error(t, err)
}

func TestDecodeUpdateRecordConfig(t *testing.T) {
	step := ActionStep{Type: ActionUpdateRecord, Config: map[string]any{
		"patch": map[string]any{"status": "archived"},
	}}

	cfg, err := step.DecodeUpdateRecordConfig()
	require.NoError(t, err)
	assert.Equal(t, "task", cfg.RecordKind)
	assert.Equal(t, "archived", cfg.Patch["status"])

	step.Config["record_kind"] = "project"

	cfg, err = step.DecodeUpdateRecordConfig()
	require.NoError(t, err)
	assert.Equal(t, "project", cfg.RecordKind)
}

func TestDecodeUpdateRecordConfig_EmptyPatch(t *testing.T) {
	step := ActionStep{Type: ActionUpdateRecord, Config: map[string]any{
		"patch": map[string]any{},
	}}

	_, err := step.DecodeUpdateRecordConfig()
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"5m", 5 * time.Minute, false},
		{"1h", time.Hour, false},
		{"2d", 48 * time.Hour, false},
		{"0.5d", 12 * time.Hour, false},
		{" 10m ", 10 * time.Minute, false},
		{"", 0, true},
		{"-5m", 0, true},
		{"-2d", 0, true},
		{"xd", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d, err := ParseDuration(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}
