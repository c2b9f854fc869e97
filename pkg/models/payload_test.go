package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerPayload_Lookup(t *testing.T) {
	payload := TriggerPayload{
		"workspace": map[string]any{"id": "ws-1"},
		"task": map[string]any{
			"title": "Launch campaign",
			"owner": nil,
			"meta": map[string]any{
				"source": "import",
			},
		},
		"count": float64(3),
	}

	tests := []struct {
		name      string
		path      string
		want      any
		wantFound bool
	}{
		{"top level", "count", float64(3), true},
		{"nested", "task.title", "Launch campaign", true},
		{"deeply nested", "task.meta.source", "import", true},
		{"present nil", "task.owner", nil, true},
		{"missing leaf", "task.status", nil, false},
		{"missing root", "project.id", nil, false},
		{"path through scalar", "task.title.length", nil, false},
		{"empty path", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := payload.Lookup(tt.path)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTriggerPayload_WorkspaceID(t *testing.T) {
	payload := TriggerPayload{"workspace": map[string]any{"id": "ws-1"}}
	assert.Equal(t, "ws-1", payload.WorkspaceID())

	assert.Empty(t, TriggerPayload{}.WorkspaceID())
	assert.Empty(t, TriggerPayload{"workspace": map[string]any{"id": 42}}.WorkspaceID())
}

func TestTriggerPayload_Clone(t *testing.T) {
	payload := TriggerPayload{
		"task": map[string]any{
			"title": "Original",
			"tags":  []any{"a", map[string]any{"k": "v"}},
		},
	}

	clone := payload.Clone()
	clone["task"].(map[string]any)["title"] = "Mutated"
	clone["task"].(map[string]any)["tags"].([]any)[1].(map[string]any)["k"] = "changed"

	assert.Equal(t, "Original", payload["task"].(map[string]any)["title"])
	assert.Equal(t, "v", payload["task"].(map[string]any)["tags"].([]any)[1].(map[string]any)["k"])
}

func TestRule_Eligible(t *testing.T) {
	rule := Rule{
		WorkspaceID:  "ws-1",
		TriggerEvent: "task.completed",
		IsActive:     true,
	}

	assert.True(t, rule.Eligible("ws-1", "task.completed"))
	assert.False(t, rule.Eligible("ws-2", "task.completed"))
	assert.False(t, rule.Eligible("ws-1", "task.created"))

	rule.IsActive = false
	assert.False(t, rule.Eligible("ws-1", "task.completed"))
}
