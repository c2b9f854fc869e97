package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileRecorder stores records as JSON documents on the file system, one file
// per record. Layout: <root>/records/<kind>/<id>.json. It implements
// protocol.RecordUpdater for local development without a SQL database.
type FileRecorder struct {
	root   string
	logger *slog.Logger
}

// NewFileRecorder creates a record store rooted at the given directory.
func NewFileRecorder(logger *slog.Logger, root string) *FileRecorder {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &FileRecorder{root: cleanRoot, logger: logger}
}

func (r *FileRecorder) recordPath(recordKind, recordID string) string {
	return filepath.Join(r.root, "records", recordKind, recordID+".json")
}

// Apply merges the patch into the record document. Patch keys overwrite
// existing document keys, untouched keys survive.
func (r *FileRecorder) Apply(ctx context.Context, recordKind, recordID string, patch map[string]any) error {
	recordFile := r.recordPath(recordKind, recordID)

	body, err := os.ReadFile(filepath.Clean(recordFile))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, recordKind, recordID)
		}

		return fmt.Errorf("failed to read %s record %s: %w", recordKind, recordID, err)
	}

	doc := map[string]any{}

	err = json.Unmarshal(body, &doc)
	if err != nil {
		return fmt.Errorf("failed to unmarshal %s record %s: %w", recordKind, recordID, err)
	}

	for key, value := range patch {
		doc[key] = value
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s record %s: %w", recordKind, recordID, err)
	}

	err = os.WriteFile(recordFile, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write %s record %s: %w", recordKind, recordID, err)
	}

	r.logger.DebugContext(ctx, "Record updated", "kind", recordKind, "id", recordID)

	return nil
}

// Close performs any necessary cleanup. For file-based records, there is nothing to clean up.
func (r *FileRecorder) Close() error {
	return nil
}
