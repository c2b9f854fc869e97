// Package recorder applies rule-driven partial updates to workspace records.
package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/ninjagenz/automata/pkg/persistence/sqlbase"
	"github.com/ninjagenz/automata/pkg/protocol"
)

// ErrRecordNotFound indicates the target record does not exist.
var ErrRecordNotFound = fmt.Errorf("record not found")

// Recorder is a closeable record-update sink.
type Recorder interface {
	protocol.RecordUpdater
	Close() error
}

// PostgresRecorder updates records stored as JSONB documents keyed by kind and
// id. It implements protocol.RecordUpdater.
type PostgresRecorder struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRecorder connects to the record store and runs its migrations.
func NewPostgresRecorder(ctx context.Context, logger *slog.Logger, databaseURL string) (*PostgresRecorder, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to record database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping record database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run record migrations: %w", err)
	}

	return &PostgresRecorder{db: database, logger: logger}, nil
}

// Apply merges the patch into the record document. Patch keys overwrite
// existing document keys, untouched keys survive.
func (r *PostgresRecorder) Apply(ctx context.Context, recordKind, recordID string, patch map[string]any) error {
	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to marshal record patch: %w", err)
	}

	query := `
		UPDATE records
		SET doc = doc || $3::jsonb, updated_at = NOW()
		WHERE kind = $1 AND id = $2
	`

	result, err := r.db.ExecContext(ctx, query, recordKind, recordID, patchJSON)
	if err != nil {
		return fmt.Errorf("failed to update %s record %s: %w", recordKind, recordID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, recordKind, recordID)
	}

	r.logger.DebugContext(ctx, "Record updated", "kind", recordKind, "id", recordID)

	return nil
}

// Close closes the database connection.
func (r *PostgresRecorder) Close() error {
	if r.db != nil {
		return r.db.Close()
	}

	return nil
}

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Workspace records (tasks, projects, reports) as JSONB documents
			CREATE TABLE IF NOT EXISTS records (
				kind VARCHAR(100) NOT NULL,
				id VARCHAR(255) NOT NULL,
				workspace_id VARCHAR(255) NOT NULL,
				doc JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (kind, id)
			);

			CREATE INDEX IF NOT EXISTS idx_records_workspace ON records(workspace_id);
		`,
	}
}
