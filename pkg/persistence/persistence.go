// Package persistence provides the storage abstraction for automation rules.
package persistence

import (
	"context"

	"github.com/ninjagenz/automata/pkg/models"
)

// RuleRepository is the rule store gateway. FindActiveRules is the hot path
// used by the engine; the remaining operations serve the authoring API.
type RuleRepository interface {
	// FindActiveRules returns the active rules of one workspace whose
	// trigger_event equals eventName. An empty workspaceID fails with
	// ErrMissingWorkspace so callers can tell a malformed request apart
	// from "no rules configured".
	FindActiveRules(ctx context.Context, workspaceID, eventName string) ([]*models.Rule, error)

	Rules(ctx context.Context, workspaceID string) ([]*models.Rule, error)
	RuleByID(ctx context.Context, workspaceID, id string) (*models.Rule, error)
	SaveRule(ctx context.Context, rule *models.Rule) error
	DeleteRule(ctx context.Context, workspaceID, id string) error
}

// Persistence is the top-level storage handle a binary owns.
type Persistence interface {
	RuleRepository() RuleRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
