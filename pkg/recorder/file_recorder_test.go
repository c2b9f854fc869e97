package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFileRecorder(t *testing.T) (*FileRecorder, string) {
	t.Helper()

	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	return NewFileRecorder(logger, root), root
}

func seedRecord(t *testing.T, root, kind, id string, doc map[string]any) {
	t.Helper()

	dir := filepath.Join(root, "records", kind)
	require.NoError(t, os.MkdirAll(dir, 0750))

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), data, 0600))
}

func TestFileRecorder_ApplyMergesPatch(t *testing.T) {
	rec, root := testFileRecorder(t)
	ctx := context.Background()

	seedRecord(t, root, "task", "task-9", map[string]any{
		"title":  "Launch campaign",
		"status": "in_progress",
	})

	err := rec.Apply(ctx, "task", "task-9", map[string]any{
		"status":   "done",
		"archived": true,
	})
	require.NoError(t, err)

	body, err := os.ReadFile(filepath.Join(root, "records", "task", "task-9.json"))
	require.NoError(t, err)

	doc := map[string]any{}
	require.NoError(t, json.Unmarshal(body, &doc))

	assert.Equal(t, "Launch campaign", doc["title"])
	assert.Equal(t, "done", doc["status"])
	assert.Equal(t, true, doc["archived"])
}

func TestFileRecorder_ApplyMissingRecord(t *testing.T) {
	rec, _ := testFileRecorder(t)

	err := rec.Apply(context.Background(), "task", "task-missing", map[string]any{
		"status": "done",
	})
	assert.True(t, errors.Is(err, ErrRecordNotFound))
}

func TestFileRecorder_KindIsolation(t *testing.T) {
	rec, root := testFileRecorder(t)
	ctx := context.Background()

	seedRecord(t, root, "project", "p-1", map[string]any{"name": "Summer"})

	err := rec.Apply(ctx, "task", "p-1", map[string]any{"status": "done"})
	assert.True(t, errors.Is(err, ErrRecordNotFound))

	require.NoError(t, rec.Apply(ctx, "project", "p-1", map[string]any{"name": "Winter"}))
}
