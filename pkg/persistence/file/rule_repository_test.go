package file

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/persistence"
)

func testRule(id, workspaceID, event string, active bool) *models.Rule {
	return &models.Rule{
		ID:           id,
		Name:         "Rule " + id,
		WorkspaceID:  workspaceID,
		TriggerEvent: event,
		IsActive:     active,
		ActionChain: []models.ActionStep{
			{Step: 1, Type: models.ActionSendNotification, Config: map[string]any{
				"template": "Hello {{user.name}}",
			}},
		},
	}
}

func TestRuleRepository_SaveAndGet(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())
	ctx := context.Background()

	rule := testRule("rule-1", "ws-1", "task.completed", true)
	require.NoError(t, repo.SaveRule(ctx, rule))

	assert.False(t, rule.CreatedAt.IsZero())
	assert.False(t, rule.UpdatedAt.IsZero())

	found, err := repo.RuleByID(ctx, "ws-1", "rule-1")
	require.NoError(t, err)
	assert.Equal(t, "rule-1", found.ID)
	assert.Equal(t, "task.completed", found.TriggerEvent)
	assert.Len(t, found.ActionChain, 1)
}

func TestRuleRepository_SaveAssignsID(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())
	ctx := context.Background()

	first := testRule("", "ws-1", "task.completed", true)
	second := testRule("", "ws-1", "task.completed", true)

	require.NoError(t, repo.SaveRule(ctx, first))
	require.NoError(t, repo.SaveRule(ctx, second))

	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)

	rules, err := repo.Rules(ctx, "ws-1")
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestRuleRepository_RuleByIDNotFound(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())

	_, err := repo.RuleByID(context.Background(), "ws-1", "missing")
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestRuleRepository_WorkspaceIsolation(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.SaveRule(ctx, testRule("rule-1", "ws-1", "task.completed", true)))

	_, err := repo.RuleByID(ctx, "ws-2", "rule-1")
	assert.True(t, persistence.IsRuleNotFound(err))

	rules, err := repo.Rules(ctx, "ws-2")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestRuleRepository_FindActiveRules(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.SaveRule(ctx, testRule("rule-1", "ws-1", "task.completed", true)))
	require.NoError(t, repo.SaveRule(ctx, testRule("rule-2", "ws-1", "task.completed", false)))
	require.NoError(t, repo.SaveRule(ctx, testRule("rule-3", "ws-1", "report.generated", true)))
	require.NoError(t, repo.SaveRule(ctx, testRule("rule-4", "ws-2", "task.completed", true)))

	rules, err := repo.FindActiveRules(ctx, "ws-1", "task.completed")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "rule-1", rules[0].ID)
}

func TestRuleRepository_FindActiveRulesMissingWorkspace(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())

	_, err := repo.FindActiveRules(context.Background(), "", "task.completed")
	assert.True(t, persistence.IsMissingWorkspace(err))
}

func TestRuleRepository_DeleteRule(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.SaveRule(ctx, testRule("rule-1", "ws-1", "task.completed", true)))
	require.NoError(t, repo.DeleteRule(ctx, "ws-1", "rule-1"))

	_, err := repo.RuleByID(ctx, "ws-1", "rule-1")
	assert.True(t, persistence.IsRuleNotFound(err))

	rules, err := repo.FindActiveRules(ctx, "ws-1", "task.completed")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestPersistence_HealthCheck(t *testing.T) {
	persist := NewPersistence(t.TempDir())
	assert.NoError(t, persist.HealthCheck(context.Background()))

	missing := NewPersistence("/nonexistent/automata-test")
	assert.Error(t, missing.HealthCheck(context.Background()))
}
