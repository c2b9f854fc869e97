package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ninjagenz/automata/pkg/engine"
	"github.com/ninjagenz/automata/pkg/eventbus"
	"github.com/ninjagenz/automata/pkg/events"
	"github.com/ninjagenz/automata/pkg/otelhelper"
	"github.com/ninjagenz/automata/pkg/persistence"
	"github.com/ninjagenz/automata/pkg/registry"
	"github.com/ninjagenz/automata/pkg/scheduler/redisqueue"
)

const (
	continuationPollInterval = 5 * time.Second
	continuationBatchSize    = 100
)

// WorkerManager consumes trigger events from the bus and runs them through
// the engine. It also drains due continuations from the delayed-execution
// queue so deferred chains resume without any dedicated process.
type WorkerManager struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	scheduler   *redisqueue.Scheduler
	engine      *engine.Engine
}

func NewWorkerManager(
	id string,
	persist persistence.Persistence,
	eventBus eventbus.EventBus,
	scheduler *redisqueue.Scheduler,
	logger *slog.Logger,
	reg *registry.Registry,
) *WorkerManager {
	return &WorkerManager{
		id:          id,
		logger:      logger.With("module", "automata-worker", "worker_id", id),
		persistence: persist,
		registry:    reg,
		eventBus:    eventBus,
		scheduler:   scheduler,
	}
}

func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager", "worker_id", w.id)

	engineOpts := []engine.Option{engine.WithPublisher(w.eventBus)}

	tracer, err := otelhelper.NewTracer(ctx, "automata-worker")
	if err != nil {
		w.logger.WarnContext(ctx, "Tracing disabled", "error", err)
	} else {
		engineOpts = append(engineOpts, engine.WithTracer(tracer))
	}

	w.engine = engine.New(w.logger, w.persistence.RuleRepository(), w.registry, engineOpts...)

	err = w.eventBus.Handle(events.TriggerReceivedEvent, w.handleTriggerReceived)
	if err != nil {
		return err
	}

	err = w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()

	go w.pollContinuations(pollCtx)

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(ctx, "Shutting down worker...")

	return nil
}

func (w *WorkerManager) handleTriggerReceived(ctx context.Context, event any) error {
	triggerEvent, ok := event.(*events.TriggerReceived)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for TriggerReceived")

		return nil
	}

	logger := w.logger.With(
		"event_name", triggerEvent.EventName,
		"workspace_id", triggerEvent.WorkspaceID,
		"event_id", triggerEvent.ID,
	)
	logger.InfoContext(ctx, "Processing trigger event")

	result, err := w.engine.Trigger(ctx, triggerEvent.EventName, triggerEvent.Payload)
	if err != nil {
		// Call-level failures (bad payload, store outage) are logged and
		// acked, redelivery cannot fix a missing workspace id.
		logger.ErrorContext(ctx, "Trigger processing failed", "error", err)

		return nil
	}

	logger.InfoContext(ctx, "Trigger processed",
		"matched", result.Matched,
		"failed_steps", result.FailedSteps())

	return nil
}

// pollContinuations drains due continuations until the context is canceled.
func (w *WorkerManager) pollContinuations(ctx context.Context) {
	ticker := time.NewTicker(continuationPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.resumeDue(ctx)
		}
	}
}

func (w *WorkerManager) resumeDue(ctx context.Context) {
	due, err := w.scheduler.Due(ctx, time.Now().UTC(), continuationBatchSize)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to read due continuations", "error", err)

		return
	}

	for _, continuation := range due {
		logger := w.logger.With(
			"continuation_id", continuation.ID,
			"rule_id", continuation.RuleID,
		)
		logger.InfoContext(ctx, "Resuming deferred chain")

		_, err := w.engine.Resume(ctx, continuation)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to resume continuation", "error", err)
		}
	}
}
