package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ninjagenz/automata/pkg/recorder"
)

// NewRecordUpdater builds the record-update sink from the database URL scheme.
// postgres:// selects the JSONB-backed store, anything else falls back to file
// storage.
func NewRecordUpdater(ctx context.Context, logger *slog.Logger, databaseURL string) (recorder.Recorder, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		updater, err := recorder.NewPostgresRecorder(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgresql record store: %w", err)
		}

		return updater, nil
	default:
		return recorder.NewFileRecorder(logger, databaseURL), nil
	}
}
