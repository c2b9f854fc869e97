package engine_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ninjagenz/automata/pkg/actions/delay"
	"github.com/ninjagenz/automata/pkg/actions/notification"
	"github.com/ninjagenz/automata/pkg/actions/updaterecord"
	"github.com/ninjagenz/automata/pkg/engine"
	"github.com/ninjagenz/automata/pkg/mocks"
	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/persistence"
	"github.com/ninjagenz/automata/pkg/registry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type engineFixture struct {
	repo      *mocks.MockRuleRepository
	notifier  *mocks.MockNotifier
	updater   *mocks.MockRecordUpdater
	scheduler *mocks.MockContinuationScheduler
	registry  *registry.Registry
	engine    *engine.Engine
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	f := &engineFixture{
		repo:      &mocks.MockRuleRepository{},
		notifier:  &mocks.MockNotifier{},
		updater:   &mocks.MockRecordUpdater{},
		scheduler: &mocks.MockContinuationScheduler{},
	}

	logger := testLogger()
	f.registry = registry.NewRegistry(logger)
	f.registry.RegisterAction(notification.NewActionFactory(f.notifier))
	f.registry.RegisterAction(delay.NewActionFactory(f.scheduler))
	f.registry.RegisterAction(updaterecord.NewActionFactory(f.updater))

	f.engine = engine.New(logger, f.repo, f.registry)

	return f
}

func taskPayload() models.TriggerPayload {
	return models.TriggerPayload{
		"workspace": map[string]any{"id": "ws-1", "name": "Ninja HQ"},
		"user":      map[string]any{"name": "Sam", "email": "sam@ninjagenz.com"},
		"task":      map[string]any{"id": "task-9", "title": "Launch campaign", "priority": "high"},
	}
}

func notifyRule(id string, steps ...models.ActionStep) *models.Rule {
	if len(steps) == 0 {
		steps = []models.ActionStep{
			{Step: 1, Type: models.ActionSendNotification, Config: map[string]any{
				"template": "Hi {{user.name}}",
			}},
		}
	}

	return &models.Rule{
		ID:           id,
		Name:         "Rule " + id,
		WorkspaceID:  "ws-1",
		TriggerEvent: "task.completed",
		IsActive:     true,
		ActionChain:  steps,
	}
}

func TestTrigger_MissingWorkspaceSkipsLookup(t *testing.T) {
	f := newEngineFixture(t)

	payload := models.TriggerPayload{
		"user": map[string]any{"email": "sam@ninjagenz.com"},
	}

	result, err := f.engine.Trigger(context.Background(), "task.completed", payload)
	require.Error(t, err)
	assert.True(t, persistence.IsMissingWorkspace(err))
	assert.Zero(t, result.Matched)

	f.repo.AssertNotCalled(t, "FindActiveRules", mock.Anything, mock.Anything, mock.Anything)
}

func TestTrigger_ExecutesMatchingRules(t *testing.T) {
	f := newEngineFixture(t)

	rules := []*models.Rule{notifyRule("rule-1"), notifyRule("rule-2")}
	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").Return(rules, nil)
	f.notifier.On("Send", mock.Anything, "sam@ninjagenz.com", "Hi Sam").Return(nil).Twice()

	result, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Matched)
	assert.Equal(t, []string{"Rule rule-1", "Rule rule-2"}, result.Rules)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, models.StepStatusSucceeded, result.Outcomes[0].Steps[0].Status)
	assert.Zero(t, result.FailedSteps())

	f.notifier.AssertExpectations(t)
}

func TestTrigger_NoMatches(t *testing.T) {
	f := newEngineFixture(t)

	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").Return([]*models.Rule{}, nil)

	result, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.NoError(t, err)
	assert.Zero(t, result.Matched)
	assert.Empty(t, result.Outcomes)
}

func TestTrigger_FiltersGateExecution(t *testing.T) {
	f := newEngineFixture(t)

	passing := notifyRule("rule-pass")
	passing.Filters = []models.Filter{
		{Field: "task.priority", Operator: models.OperatorEquals, Value: "high"},
	}

	rejected := notifyRule("rule-reject")
	rejected.Filters = []models.Filter{
		{Field: "task.priority", Operator: models.OperatorEquals, Value: "low"},
	}

	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").
		Return([]*models.Rule{passing, rejected}, nil)
	f.notifier.On("Send", mock.Anything, "sam@ninjagenz.com", "Hi Sam").Return(nil).Once()

	result, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, []string{"Rule rule-pass"}, result.Rules)

	f.notifier.AssertExpectations(t)
}

func TestTrigger_FilterErrorRecordsRuleError(t *testing.T) {
	f := newEngineFixture(t)

	rule := notifyRule("rule-1")
	rule.Filters = []models.Filter{
		{Field: "task.priority", Operator: "regex", Value: ".*"},
	}

	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").
		Return([]*models.Rule{rule}, nil)

	result, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.NoError(t, err)

	assert.Zero(t, result.Matched)
	require.Len(t, result.Outcomes, 1)
	assert.Empty(t, result.Outcomes[0].Steps)
	assert.Contains(t, result.Outcomes[0].Error, "filter evaluation failed")
	assert.Contains(t, result.Outcomes[0].Error, "task.priority")

	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestTrigger_TimeoutDuringLastChain(t *testing.T) {
	f := newEngineFixture(t)

	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").
		Return([]*models.Rule{notifyRule("rule-1")}, nil)
	f.notifier.On("Send", mock.Anything, "sam@ninjagenz.com", "Hi Sam").
		Run(func(mock.Arguments) {
			time.Sleep(100 * time.Millisecond)
		}).
		Return(nil).Once()

	eng := engine.New(testLogger(), f.repo, f.registry, engine.WithTimeout(20*time.Millisecond))

	result, err := eng.Trigger(context.Background(), "task.completed", taskPayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrTriggerTimeout)

	// The rule that ran before the deadline stays in the result.
	assert.Equal(t, 1, result.Matched)
	require.Len(t, result.Outcomes, 1)
}

func TestTrigger_DropsForeignWorkspaceRule(t *testing.T) {
	f := newEngineFixture(t)

	leaked := notifyRule("rule-leak")
	leaked.WorkspaceID = "ws-other"

	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").
		Return([]*models.Rule{leaked}, nil)

	result, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.NoError(t, err)
	assert.Zero(t, result.Matched)

	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestTrigger_UnknownStepTypeSkippedMidChain(t *testing.T) {
	f := newEngineFixture(t)

	rule := notifyRule("rule-1",
		models.ActionStep{Step: 1, Type: models.ActionSendNotification, Config: map[string]any{
			"template": "first",
		}},
		models.ActionStep{Step: 2, Type: "post_to_crm", Config: map[string]any{}},
		models.ActionStep{Step: 3, Type: models.ActionSendNotification, Config: map[string]any{
			"template": "third",
		}},
	)

	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").
		Return([]*models.Rule{rule}, nil)
	f.notifier.On("Send", mock.Anything, "sam@ninjagenz.com", "first").Return(nil).Once()
	f.notifier.On("Send", mock.Anything, "sam@ninjagenz.com", "third").Return(nil).Once()

	result, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 1)
	steps := result.Outcomes[0].Steps
	require.Len(t, steps, 3)
	assert.Equal(t, models.StepStatusSucceeded, steps[0].Status)
	assert.Equal(t, models.StepStatusSkipped, steps[1].Status)
	assert.Contains(t, steps[1].Error, "unknown action type")
	assert.Equal(t, models.StepStatusSucceeded, steps[2].Status)

	f.notifier.AssertExpectations(t)
}

func TestTrigger_StepFailureDoesNotAbortChain(t *testing.T) {
	f := newEngineFixture(t)

	rule := notifyRule("rule-1",
		models.ActionStep{Step: 1, Type: models.ActionSendNotification, Config: map[string]any{
			"template": "Hi {{user.name}}",
		}},
		models.ActionStep{Step: 2, Type: models.ActionUpdateRecord, Config: map[string]any{
			"patch": map[string]any{"status": "archived"},
		}},
	)

	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").
		Return([]*models.Rule{rule}, nil)
	f.notifier.On("Send", mock.Anything, "sam@ninjagenz.com", "Hi Sam").
		Return(errors.New("smtp bridge down")).Once()
	f.updater.On("Apply", mock.Anything, "task", "task-9", map[string]any{"status": "archived"}).
		Return(nil).Once()

	result, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Matched)
	steps := result.Outcomes[0].Steps
	require.Len(t, steps, 2)
	assert.Equal(t, models.StepStatusFailed, steps[0].Status)
	assert.Contains(t, steps[0].Error, "smtp bridge down")
	assert.Equal(t, models.StepStatusSucceeded, steps[1].Status)
	assert.Equal(t, 1, result.FailedSteps())

	f.updater.AssertExpectations(t)
}

func TestTrigger_RuleFailureIsolation(t *testing.T) {
	f := newEngineFixture(t)

	broken := notifyRule("rule-broken",
		models.ActionStep{Step: 1, Type: models.ActionSendNotification, Config: map[string]any{
			"template": "broken",
		}},
	)
	healthy := notifyRule("rule-healthy",
		models.ActionStep{Step: 1, Type: models.ActionSendNotification, Config: map[string]any{
			"template": "healthy",
		}},
	)

	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").
		Return([]*models.Rule{broken, healthy}, nil)
	f.notifier.On("Send", mock.Anything, "sam@ninjagenz.com", "broken").
		Return(errors.New("dispatch failed")).Once()
	f.notifier.On("Send", mock.Anything, "sam@ninjagenz.com", "healthy").Return(nil).Once()

	result, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Matched)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, models.StepStatusFailed, result.Outcomes[0].Steps[0].Status)
	assert.Equal(t, models.StepStatusSucceeded, result.Outcomes[1].Steps[0].Status)

	f.notifier.AssertExpectations(t)
}

func TestTrigger_DelayDefersRemainderOfChain(t *testing.T) {
	f := newEngineFixture(t)

	rule := notifyRule("rule-1",
		models.ActionStep{Step: 1, Type: models.ActionSendNotification, Config: map[string]any{
			"template": "before delay",
		}},
		models.ActionStep{Step: 2, Type: models.ActionDelay, Config: map[string]any{
			"duration": "1h",
		}},
		models.ActionStep{Step: 3, Type: models.ActionSendNotification, Config: map[string]any{
			"template": "after delay",
		}},
	)

	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").
		Return([]*models.Rule{rule}, nil)
	f.notifier.On("Send", mock.Anything, "sam@ninjagenz.com", "before delay").Return(nil).Once()

	var captured *models.Continuation

	f.scheduler.On("Schedule", mock.Anything, mock.AnythingOfType("*models.Continuation")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*models.Continuation)
		}).
		Return(nil).Once()

	result, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 1)
	outcome := result.Outcomes[0]
	assert.True(t, outcome.Deferred)
	require.Len(t, outcome.Steps, 2)
	assert.Equal(t, models.StepStatusSucceeded, outcome.Steps[0].Status)
	assert.Equal(t, models.StepStatusDeferred, outcome.Steps[1].Status)

	require.NotNil(t, captured)
	assert.Equal(t, "rule-1", captured.RuleID)
	assert.Equal(t, "ws-1", captured.WorkspaceID)
	assert.Equal(t, 2, captured.NextStep)
	assert.Equal(t, "ws-1", captured.Payload.WorkspaceID())

	f.notifier.AssertNumberOfCalls(t, "Send", 1)
}

func TestTrigger_LookupErrorSurfaces(t *testing.T) {
	f := newEngineFixture(t)

	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").
		Return(nil, errors.New("connection refused"))

	result, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.Error(t, err)

	var lookupErr *persistence.LookupError

	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "ws-1", lookupErr.WorkspaceID)
	assert.Zero(t, result.Matched)
}

func TestTrigger_Idempotent(t *testing.T) {
	f := newEngineFixture(t)

	f.repo.On("FindActiveRules", mock.Anything, "ws-1", "task.completed").
		Return([]*models.Rule{notifyRule("rule-1")}, nil)
	f.notifier.On("Send", mock.Anything, "sam@ninjagenz.com", "Hi Sam").Return(nil)

	first, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.NoError(t, err)

	second, err := f.engine.Trigger(context.Background(), "task.completed", taskPayload())
	require.NoError(t, err)

	assert.Equal(t, first.Matched, second.Matched)
	assert.Equal(t, first.Rules, second.Rules)

	f.notifier.AssertNumberOfCalls(t, "Send", 2)
}

func TestResume_RunsRemainingSteps(t *testing.T) {
	f := newEngineFixture(t)

	rule := notifyRule("rule-1",
		models.ActionStep{Step: 1, Type: models.ActionSendNotification, Config: map[string]any{
			"template": "before delay",
		}},
		models.ActionStep{Step: 2, Type: models.ActionDelay, Config: map[string]any{
			"duration": "1h",
		}},
		models.ActionStep{Step: 3, Type: models.ActionSendNotification, Config: map[string]any{
			"template": "after delay",
		}},
	)

	f.repo.On("RuleByID", mock.Anything, "ws-1", "rule-1").Return(rule, nil)
	f.notifier.On("Send", mock.Anything, "sam@ninjagenz.com", "after delay").Return(nil).Once()

	continuation := &models.Continuation{
		ID:          "cont-1",
		RuleID:      "rule-1",
		RuleName:    rule.Name,
		WorkspaceID: "ws-1",
		EventName:   "task.completed",
		NextStep:    2,
		Payload:     taskPayload(),
	}

	outcome, err := f.engine.Resume(context.Background(), continuation)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	require.Len(t, outcome.Steps, 1)
	assert.Equal(t, models.StepStatusSucceeded, outcome.Steps[0].Status)

	f.notifier.AssertExpectations(t)
}

func TestResume_DroppedForDeletedRule(t *testing.T) {
	f := newEngineFixture(t)

	f.repo.On("RuleByID", mock.Anything, "ws-1", "rule-gone").
		Return(nil, persistence.ErrRuleNotFound)

	outcome, err := f.engine.Resume(context.Background(), &models.Continuation{
		RuleID:      "rule-gone",
		WorkspaceID: "ws-1",
		Payload:     taskPayload(),
	})
	require.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestResume_DroppedForDeactivatedRule(t *testing.T) {
	f := newEngineFixture(t)

	rule := notifyRule("rule-1")
	rule.IsActive = false

	f.repo.On("RuleByID", mock.Anything, "ws-1", "rule-1").Return(rule, nil)

	outcome, err := f.engine.Resume(context.Background(), &models.Continuation{
		RuleID:      "rule-1",
		WorkspaceID: "ws-1",
		NextStep:    1,
		Payload:     taskPayload(),
	})
	require.NoError(t, err)
	assert.Nil(t, outcome)

	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestResume_MissingWorkspace(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Resume(context.Background(), &models.Continuation{RuleID: "rule-1"})
	assert.True(t, persistence.IsMissingWorkspace(err))
}
