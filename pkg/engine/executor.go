package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/protocol"
	"github.com/ninjagenz/automata/pkg/registry"
)

// Executor interprets one rule's action chain, step by step and strictly in
// order. Step failures are recorded, never fatal to the chain: a failed
// notification must not abort a later record update, and an unknown step type
// is skipped so the rest of the chain still runs. Prior steps are never rolled
// back; a chain is a best-effort sequence, not a transaction.
type Executor struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func NewExecutor(registry *registry.Registry, logger *slog.Logger) *Executor {
	return &Executor{
		registry: registry,
		logger:   logger.With("module", "executor"),
	}
}

// RunChain executes rule.ActionChain from startIndex against payload. The
// returned outcome always covers every step reached; the error, when non-nil,
// is a *RuleExecutionError aggregating the step failures.
func (x *Executor) RunChain(ctx context.Context, rule *models.Rule, startIndex int, payload models.TriggerPayload) (models.RuleOutcome, error) {
	outcome := models.RuleOutcome{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Steps:    make([]models.StepOutcome, 0, len(rule.ActionChain)-startIndex),
	}

	logger := x.logger.With("rule_id", rule.ID, "rule_name", rule.Name)

	var stepErrors []error

	for i := startIndex; i < len(rule.ActionChain); i++ {
		step := rule.ActionChain[i]
		stepLogger := logger.With("step", step.Step, "step_type", step.Type)

		if !x.registry.IsActionRegistered(step.Type) {
			err := &UnknownActionTypeError{Step: step.Step, Type: step.Type}
			stepLogger.WarnContext(ctx, "Skipping step of unknown action type")
			stepErrors = append(stepErrors, err)
			outcome.Steps = append(outcome.Steps, models.StepOutcome{
				Step:   step.Step,
				Type:   step.Type,
				Status: models.StepStatusSkipped,
				Error:  err.Error(),
			})

			continue
		}

		action, err := x.registry.CreateAction(step.Type, step.Config)
		if err != nil {
			execErr := &ActionExecutionError{Step: step.Step, Type: step.Type, Err: err}
			stepLogger.ErrorContext(ctx, "Failed to build action from step config", "error", err)
			stepErrors = append(stepErrors, execErr)
			outcome.Steps = append(outcome.Steps, models.StepOutcome{
				Step:   step.Step,
				Type:   step.Type,
				Status: models.StepStatusFailed,
				Error:  execErr.Error(),
			})

			continue
		}

		run := models.RuleRun{
			RuleID:      rule.ID,
			RuleName:    rule.Name,
			WorkspaceID: rule.WorkspaceID,
			EventName:   rule.TriggerEvent,
			StepIndex:   i,
			Payload:     payload,
		}

		_, err = action.Execute(ctx, run, stepLogger)

		switch {
		case errors.Is(err, protocol.ErrChainDeferred):
			outcome.Steps = append(outcome.Steps, models.StepOutcome{
				Step:   step.Step,
				Type:   step.Type,
				Status: models.StepStatusDeferred,
			})
			outcome.Deferred = true

			stepLogger.InfoContext(ctx, "Chain deferred, ending synchronous run")

			return outcome, x.aggregate(rule, stepErrors)
		case err != nil:
			execErr := &ActionExecutionError{Step: step.Step, Type: step.Type, Err: err}
			stepLogger.ErrorContext(ctx, "Action step failed", "error", err)
			stepErrors = append(stepErrors, execErr)
			outcome.Steps = append(outcome.Steps, models.StepOutcome{
				Step:   step.Step,
				Type:   step.Type,
				Status: models.StepStatusFailed,
				Error:  execErr.Error(),
			})
		default:
			outcome.Steps = append(outcome.Steps, models.StepOutcome{
				Step:   step.Step,
				Type:   step.Type,
				Status: models.StepStatusSucceeded,
			})
		}
	}

	return outcome, x.aggregate(rule, stepErrors)
}

func (x *Executor) aggregate(rule *models.Rule, stepErrors []error) error {
	if len(stepErrors) == 0 {
		return nil
	}

	return &RuleExecutionError{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Errs:     stepErrors,
	}
}
