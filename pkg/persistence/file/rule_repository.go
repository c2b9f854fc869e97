package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/persistence"
)

// RuleRepository stores rules as JSON files, one directory per workspace.
// Layout: <root>/rules/<workspace_id>/<rule_id>.json.
type RuleRepository struct {
	root string
}

// NewRuleRepository creates a new rule repository rooted at the given directory.
func NewRuleRepository(root string) *RuleRepository {
	return &RuleRepository{root: root}
}

func (rr *RuleRepository) workspaceDir(workspaceID string) string {
	return path.Join(rr.root, "rules", workspaceID)
}

// FindActiveRules returns the active rules of one workspace for one event.
func (rr *RuleRepository) FindActiveRules(ctx context.Context, workspaceID, eventName string) ([]*models.Rule, error) {
	if workspaceID == "" {
		return nil, persistence.ErrMissingWorkspace
	}

	rules, err := rr.Rules(ctx, workspaceID)
	if err != nil {
		return nil, persistence.NewLookupError("FindActiveRules", workspaceID, eventName, err)
	}

	matched := make([]*models.Rule, 0, len(rules))

	for _, rule := range rules {
		if rule.Eligible(workspaceID, eventName) {
			matched = append(matched, rule)
		}
	}

	return matched, nil
}

// Rules returns all non-deleted rules of a workspace, ordered by creation time.
func (rr *RuleRepository) Rules(_ context.Context, workspaceID string) ([]*models.Rule, error) {
	if workspaceID == "" {
		return nil, persistence.ErrMissingWorkspace
	}

	dir := rr.workspaceDir(workspaceID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.Rule{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list rule files: %w", err)
	}

	rules := make([]*models.Rule, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		rule, err := rr.readRule(path.Join(dir, file))
		if err != nil {
			return nil, err
		}

		if rule.DeletedAt != nil {
			continue
		}

		rules = append(rules, rule)
	}

	sort.Slice(rules, func(i, j int) bool {
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})

	return rules, nil
}

// RuleByID retrieves a single rule scoped to a workspace.
func (rr *RuleRepository) RuleByID(_ context.Context, workspaceID, id string) (*models.Rule, error) {
	if workspaceID == "" {
		return nil, persistence.ErrMissingWorkspace
	}

	rule, err := rr.readRule(path.Join(rr.workspaceDir(workspaceID), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrRuleNotFound
		}

		return nil, err
	}

	if rule.DeletedAt != nil || rule.WorkspaceID != workspaceID {
		return nil, persistence.ErrRuleNotFound
	}

	return rule, nil
}

// SaveRule creates or replaces a rule file.
func (rr *RuleRepository) SaveRule(_ context.Context, rule *models.Rule) error {
	if rule.WorkspaceID == "" {
		return persistence.ErrMissingWorkspace
	}

	dir := rr.workspaceDir(rule.WorkspaceID)

	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create rules directory: %w", err)
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

	data, err := json.MarshalIndent(rule, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rule %s: %w", rule.ID, err)
	}

	return os.WriteFile(path.Join(dir, rule.ID+".json"), data, 0600)
}

// DeleteRule soft-deletes a rule by setting its deleted_at timestamp.
func (rr *RuleRepository) DeleteRule(ctx context.Context, workspaceID, id string) error {
	rule, err := rr.RuleByID(ctx, workspaceID, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rule.DeletedAt = &now

	return rr.SaveRule(ctx, rule)
}

func (rr *RuleRepository) readRule(filePath string) (*models.Rule, error) {
	body, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to read rule file %s: %w", filePath, err)
	}

	var rule models.Rule

	err = json.Unmarshal(body, &rule)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal rule file %s: %w", filePath, err)
	}

	return &rule, nil
}
