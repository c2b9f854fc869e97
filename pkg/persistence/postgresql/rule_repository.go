package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/persistence"
)

// RuleRepository handles rule-related database operations.
type RuleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRuleRepository creates a new rule repository.
func NewRuleRepository(db *sql.DB, logger *slog.Logger) *RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

const ruleColumns = `
	id
  , workspace_id
  , name
  , trigger_event
  , is_active
  , filters
  , action_chain
  , created_at
  , updated_at
  , deleted_at
`

// FindActiveRules returns the active rules of one workspace for one event.
// Filter evaluation stays in the engine, the database only narrows the set.
func (r *RuleRepository) FindActiveRules(ctx context.Context, workspaceID, eventName string) ([]*models.Rule, error) {
	if workspaceID == "" {
		return nil, persistence.ErrMissingWorkspace
	}

	query := `
		SELECT ` + ruleColumns + `
		FROM automation_rules
		WHERE workspace_id = $1
		  AND trigger_event = $2
		  AND is_active
		  AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rules, err := r.queryRules(ctx, query, workspaceID, eventName)
	if err != nil {
		return nil, persistence.NewLookupError("FindActiveRules", workspaceID, eventName, err)
	}

	return rules, nil
}

// Rules returns all non-deleted rules of a workspace.
func (r *RuleRepository) Rules(ctx context.Context, workspaceID string) ([]*models.Rule, error) {
	if workspaceID == "" {
		return nil, persistence.ErrMissingWorkspace
	}

	query := `
		SELECT ` + ruleColumns + `
		FROM automation_rules
		WHERE workspace_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	return r.queryRules(ctx, query, workspaceID)
}

// RuleByID retrieves a single rule scoped to a workspace.
func (r *RuleRepository) RuleByID(ctx context.Context, workspaceID, id string) (*models.Rule, error) {
	if workspaceID == "" {
		return nil, persistence.ErrMissingWorkspace
	}

	query := `
		SELECT ` + ruleColumns + `
		FROM automation_rules
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, workspaceID, id)

	rule, err := r.scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrRuleNotFound
		}

		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	return rule, nil
}

// SaveRule inserts or updates a rule.
func (r *RuleRepository) SaveRule(ctx context.Context, rule *models.Rule) error {
	if rule.WorkspaceID == "" {
		return persistence.ErrMissingWorkspace
	}

	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	rule.UpdatedAt = now

	if rule.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate rule ID: %w", err)
		}

		rule.ID = id.String()
	}

	filtersJSON, err := json.Marshal(rule.Filters)
	if err != nil {
		return fmt.Errorf("failed to marshal filters: %w", err)
	}

	chainJSON, err := json.Marshal(rule.ActionChain)
	if err != nil {
		return fmt.Errorf("failed to marshal action chain: %w", err)
	}

	query := `
		INSERT INTO automation_rules (
			id, workspace_id, name, trigger_event, is_active,
			filters, action_chain, created_at, updated_at, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			trigger_event = EXCLUDED.trigger_event,
			is_active = EXCLUDED.is_active,
			filters = EXCLUDED.filters,
			action_chain = EXCLUDED.action_chain,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
		WHERE automation_rules.workspace_id = EXCLUDED.workspace_id
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID, rule.WorkspaceID, rule.Name, rule.TriggerEvent, rule.IsActive,
		filtersJSON, chainJSON, rule.CreatedAt, rule.UpdatedAt, rule.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule %s: %w", rule.ID, err)
	}

	return nil
}

// DeleteRule soft deletes a rule by setting its deleted_at timestamp.
func (r *RuleRepository) DeleteRule(ctx context.Context, workspaceID, id string) error {
	if workspaceID == "" {
		return persistence.ErrMissingWorkspace
	}

	query := `
		UPDATE automation_rules
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, workspaceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if affected == 0 {
		return persistence.ErrRuleNotFound
	}

	return nil
}

func (r *RuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]*models.Rule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	rules := make([]*models.Rule, 0)

	for rows.Next() {
		rule, err := r.scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		rules = append(rules, rule)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RuleRepository) scanRule(row rowScanner) (*models.Rule, error) {
	var (
		rule       models.Rule
		filtersRaw []byte
		chainRaw   []byte
	)

	err := row.Scan(
		&rule.ID,
		&rule.WorkspaceID,
		&rule.Name,
		&rule.TriggerEvent,
		&rule.IsActive,
		&filtersRaw,
		&chainRaw,
		&rule.CreatedAt,
		&rule.UpdatedAt,
		&rule.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(filtersRaw) > 0 {
		err = json.Unmarshal(filtersRaw, &rule.Filters)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal filters: %w", err)
		}
	}

	if len(chainRaw) > 0 {
		err = json.Unmarshal(chainRaw, &rule.ActionChain)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal action chain: %w", err)
		}
	}

	return &rule, nil
}
