// Package delay implements the delay action. The remainder of the chain is
// serialized as a continuation and handed to the delayed-execution queue; the
// synchronous run terminates with protocol.ErrChainDeferred. When no scheduler
// is wired in, the step degrades to a recorded no-op marker and the chain
// continues immediately. The calling goroutine never sleeps either way.
package delay

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/protocol"
)

type ActionFactory struct {
	scheduler protocol.ContinuationScheduler
}

// NewActionFactory builds the delay factory. scheduler may be nil, in which
// case delays execute as immediate no-op markers.
func NewActionFactory(scheduler protocol.ContinuationScheduler) *ActionFactory {
	return &ActionFactory{scheduler: scheduler}
}

func (*ActionFactory) ID() string {
	return string(models.ActionDelay)
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	step := models.ActionStep{Type: models.ActionDelay, Config: config}

	cfg, duration, err := step.DecodeDelayConfig()
	if err != nil {
		return nil, err
	}

	return &Action{config: cfg, duration: duration, scheduler: f.scheduler}, nil
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"duration": map[string]any{
				"type":        "string",
				"description": "Pause before the rest of the chain runs, e.g. \"30s\", \"5m\", \"1h\", \"2d\".",
				"pattern":     `^[0-9]+(\.[0-9]+)?(ns|us|ms|s|m|h|d)$`,
			},
		},
		"required": []string{"duration"},
	}
}

type Action struct {
	config    models.DelayConfig
	duration  time.Duration
	scheduler protocol.ContinuationScheduler
}

func (a *Action) Execute(ctx context.Context, run models.RuleRun, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", models.ActionDelay, "duration", a.config.Duration)

	if a.scheduler == nil {
		logger.WarnContext(ctx, "No continuation scheduler wired, continuing immediately")

		return map[string]any{
			"mode":     "immediate",
			"duration": a.config.Duration,
		}, nil
	}

	continuation := &models.Continuation{
		ID:          uuid.New().String(),
		RuleID:      run.RuleID,
		RuleName:    run.RuleName,
		WorkspaceID: run.WorkspaceID,
		EventName:   run.EventName,
		NextStep:    run.StepIndex + 1,
		Payload:     run.Payload.Clone(),
		ResumeAt:    time.Now().UTC().Add(a.duration),
	}

	err := a.scheduler.Schedule(ctx, continuation)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Chain continuation scheduled",
		"continuation_id", continuation.ID,
		"resume_at", continuation.ResumeAt,
	)

	return map[string]any{
		"mode":            "scheduled",
		"duration":        a.config.Duration,
		"continuation_id": continuation.ID,
		"resume_at":       continuation.ResumeAt,
	}, protocol.ErrChainDeferred
}
