// Package engine orchestrates automation rule execution: it resolves the
// rules matching a trigger event, evaluates their filters, and runs each
// passing rule's action chain with per-rule error isolation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ninjagenz/automata/pkg/eventbus"
	"github.com/ninjagenz/automata/pkg/events"
	"github.com/ninjagenz/automata/pkg/filter"
	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/otelhelper"
	"github.com/ninjagenz/automata/pkg/persistence"
	"github.com/ninjagenz/automata/pkg/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultTriggerTimeout = 30 * time.Second

type Engine struct {
	rules     persistence.RuleRepository
	executor  *Executor
	evaluator filter.Evaluator
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
	logger    *slog.Logger
	timeout   time.Duration
}

type Option func(*Engine)

// WithTimeout bounds the total execution time of one Trigger call, covering
// rule lookup and every chain run.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.timeout = timeout
	}
}

// WithEvaluator swaps the filter predicate evaluator.
func WithEvaluator(evaluator filter.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = evaluator
	}
}

// WithPublisher emits rule execution lifecycle events onto the bus.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(e *Engine) {
		e.publisher = publisher
	}
}

// WithTracer records a span per trigger call and per rule chain.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

func New(logger *slog.Logger, rules persistence.RuleRepository, reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		rules:     rules,
		executor:  NewExecutor(reg, logger),
		evaluator: filter.NewSimpleEvaluator(),
		logger:    logger.With("module", "engine"),
		timeout:   defaultTriggerTimeout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Trigger runs every eligible rule of the payload's workspace for eventName.
// The returned result counts rules selected for execution; step-level
// failures ride along in the per-rule outcomes and never hide sibling rules.
// The error return covers call-level failures only: missing workspace id,
// rule lookup failure, or the execution ceiling.
func (e *Engine) Trigger(ctx context.Context, eventName string, payload models.TriggerPayload) (*models.TriggerResult, error) {
	result := &models.TriggerResult{}

	workspaceID := payload.WorkspaceID()
	if workspaceID == "" {
		return result, persistence.ErrMissingWorkspace
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	logger := e.logger.With("event", eventName, "workspace_id", workspaceID)

	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "engine.trigger",
			attribute.String(otelhelper.EventNameKey, eventName),
			attribute.String(otelhelper.WorkspaceIDKey, workspaceID),
		)
		defer span.End()
	}

	matched, err := e.rules.FindActiveRules(ctx, workspaceID, eventName)
	if err != nil {
		var lookupErr *persistence.LookupError
		if !errors.As(err, &lookupErr) {
			err = persistence.NewLookupError("FindActiveRules", workspaceID, eventName, err)
		}

		logger.ErrorContext(ctx, "Rule lookup failed", "error", err)

		return result, err
	}

	logger.InfoContext(ctx, "Rules fetched", "count", len(matched))

	for _, rule := range matched {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%w after %d of %d rules: %w", ErrTriggerTimeout, len(result.Rules), len(matched), ctxErr)
		}

		// The repository already partitions by tenant; re-check here so a
		// misbehaving store can never leak another workspace's rule into
		// this run.
		if !rule.Eligible(workspaceID, eventName) {
			logger.WarnContext(ctx, "Dropping ineligible rule returned by store", "rule_id", rule.ID)

			continue
		}

		pass, err := filter.Match(e.evaluator, payload, rule.Filters)
		if err != nil {
			logger.ErrorContext(ctx, "Filter evaluation failed, skipping rule", "rule_id", rule.ID, "error", err)
			result.Outcomes = append(result.Outcomes, models.RuleOutcome{
				RuleID:   rule.ID,
				RuleName: rule.Name,
				Error:    fmt.Sprintf("filter evaluation failed: %v", err),
			})

			continue
		}

		if !pass {
			logger.DebugContext(ctx, "Filters rejected rule", "rule_id", rule.ID)

			continue
		}

		result.Matched++
		result.Rules = append(result.Rules, rule.Name)

		// Each rule gets its own payload copy: sibling chains must never
		// observe each other's mutations.
		outcome, execErr := e.runRule(ctx, rule, payload.Clone())
		result.Outcomes = append(result.Outcomes, outcome)

		if execErr != nil {
			logger.WarnContext(ctx, "Rule chain completed with failures", "rule_id", rule.ID, "error", execErr)
		}
	}

	// The deadline may also expire inside the last rule's chain, after the
	// loop's per-rule check has already passed.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%w after %d of %d rules: %w", ErrTriggerTimeout, len(result.Rules), len(matched), ctxErr)
	}

	logger.InfoContext(ctx, "Trigger processed", "matched", result.Matched, "failed_steps", result.FailedSteps())

	return result, nil
}

// Resume continues a deferred action chain from its recorded step index. A
// continuation whose rule has since been deactivated or deleted is dropped
// with a nil outcome.
func (e *Engine) Resume(ctx context.Context, c *models.Continuation) (*models.RuleOutcome, error) {
	if c.WorkspaceID == "" {
		return nil, persistence.ErrMissingWorkspace
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	logger := e.logger.With("continuation_id", c.ID, "rule_id", c.RuleID, "workspace_id", c.WorkspaceID)

	rule, err := e.rules.RuleByID(ctx, c.WorkspaceID, c.RuleID)
	if err != nil {
		if persistence.IsRuleNotFound(err) {
			logger.WarnContext(ctx, "Dropping continuation for deleted rule")

			return nil, nil
		}

		return nil, persistence.NewLookupError("RuleByID", c.WorkspaceID, c.EventName, err)
	}

	if !rule.IsActive {
		logger.WarnContext(ctx, "Dropping continuation for deactivated rule")

		return nil, nil
	}

	outcome, execErr := e.runRuleFrom(ctx, rule, c.NextStep, c.Payload.Clone())

	if e.publisher != nil {
		event := events.ContinuationResumed{
			BaseEvent:      events.NewBaseEvent(events.ContinuationResumedEvent, c.WorkspaceID),
			ContinuationID: c.ID,
			RuleID:         c.RuleID,
			Outcome:        outcome,
		}

		if pubErr := e.publisher.Publish(ctx, c.WorkspaceID, event); pubErr != nil {
			logger.ErrorContext(ctx, "Failed to publish continuation resumed event", "error", pubErr)
		}
	}

	if execErr != nil {
		logger.WarnContext(ctx, "Resumed chain completed with failures", "error", execErr)
	}

	return &outcome, nil
}

func (e *Engine) runRule(ctx context.Context, rule *models.Rule, payload models.TriggerPayload) (models.RuleOutcome, error) {
	return e.runRuleFrom(ctx, rule, 0, payload)
}

func (e *Engine) runRuleFrom(ctx context.Context, rule *models.Rule, startIndex int, payload models.TriggerPayload) (models.RuleOutcome, error) {
	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "engine.rule",
			attribute.String(otelhelper.RuleIDKey, rule.ID),
			attribute.String(otelhelper.RuleNameKey, rule.Name),
		)
		defer span.End()
	}

	outcome, execErr := e.executor.RunChain(ctx, rule, startIndex, payload)

	e.publishOutcome(ctx, rule, outcome, execErr)

	return outcome, execErr
}

func (e *Engine) publishOutcome(ctx context.Context, rule *models.Rule, outcome models.RuleOutcome, execErr error) {
	if e.publisher == nil {
		return
	}

	var event eventbus.Event
	if execErr != nil {
		event = events.RuleFailed{
			BaseEvent: events.NewBaseEvent(events.RuleFailedEvent, rule.WorkspaceID),
			RuleID:    rule.ID,
			RuleName:  rule.Name,
			EventName: rule.TriggerEvent,
			Outcome:   outcome,
			Error:     execErr.Error(),
		}
	} else {
		event = events.RuleExecuted{
			BaseEvent: events.NewBaseEvent(events.RuleExecutedEvent, rule.WorkspaceID),
			RuleID:    rule.ID,
			RuleName:  rule.Name,
			EventName: rule.TriggerEvent,
			Outcome:   outcome,
		}
	}

	err := e.publisher.Publish(ctx, rule.WorkspaceID, event)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to publish rule outcome event", "rule_id", rule.ID, "error", err)
	}
}
