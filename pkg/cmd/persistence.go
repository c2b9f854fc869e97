package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ninjagenz/automata/pkg/persistence"
	"github.com/ninjagenz/automata/pkg/persistence/file"
	"github.com/ninjagenz/automata/pkg/persistence/postgresql"
)

// NewPersistence builds the persistence layer from the database URL scheme.
// postgres:// selects PostgreSQL, anything else falls back to file storage.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		persist, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgresql persistence: %w", err)
		}

		return persist, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parseProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	return parts[0]
}
