package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ninjagenz/automata/pkg/eventbus"
	"github.com/ninjagenz/automata/pkg/events"
	"github.com/ninjagenz/automata/pkg/models"
)

// Entry maps one cron expression to the trigger event it fires.
type Entry struct {
	WorkspaceID string
	EventName   string
	CronExpr    string
}

// ParseEntries parses "<workspace_id>:<event_name>=<cron expr>" entries and
// validates each cron expression.
func ParseEntries(raw []string) ([]Entry, error) {
	if len(raw) == 0 {
		return nil, errors.New("at least one schedule entry is required")
	}

	entries := make([]Entry, 0, len(raw))

	for _, item := range raw {
		target, cronExpr, found := strings.Cut(item, "=")
		if !found {
			return nil, fmt.Errorf("invalid schedule entry %q, expected <workspace_id>:<event_name>=<cron expr>", item)
		}

		workspaceID, eventName, found := strings.Cut(target, ":")
		if !found || workspaceID == "" || eventName == "" {
			return nil, fmt.Errorf("invalid schedule target %q, expected <workspace_id>:<event_name>", target)
		}

		if _, err := cron.ParseStandard(cronExpr); err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
		}

		entries = append(entries, Entry{
			WorkspaceID: workspaceID,
			EventName:   eventName,
			CronExpr:    cronExpr,
		})
	}

	return entries, nil
}

// SchedulerManager runs the cron entries and publishes a TriggerReceived
// event for each firing. The worker fleet picks them up like any other
// trigger.
type SchedulerManager struct {
	logger    *slog.Logger
	publisher eventbus.EventPublisher
	entries   []Entry
	cron      *cron.Cron
}

func NewSchedulerManager(logger *slog.Logger, publisher eventbus.EventPublisher, entries []Entry) *SchedulerManager {
	return &SchedulerManager{
		logger:    logger.With("module", "automata-scheduler"),
		publisher: publisher,
		entries:   entries,
	}
}

func (s *SchedulerManager) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting scheduler", "entries", len(s.entries))

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	for _, entry := range s.entries {
		id, err := s.cron.AddFunc(entry.CronExpr, s.fire(entry))
		if err != nil {
			return fmt.Errorf("failed to add cron job for %s:%s: %w", entry.WorkspaceID, entry.EventName, err)
		}

		s.logger.InfoContext(ctx, "Schedule entry registered",
			"cron_id", id,
			"workspace_id", entry.WorkspaceID,
			"event_name", entry.EventName,
			"cron", entry.CronExpr)
	}

	s.cron.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	s.logger.InfoContext(ctx, "Shutting down scheduler...")

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	return nil
}

func (s *SchedulerManager) fire(entry Entry) func() {
	return func() {
		ctx := context.Background()

		event := events.TriggerReceived{
			BaseEvent: events.NewBaseEvent(events.TriggerReceivedEvent, entry.WorkspaceID),
			EventName: entry.EventName,
			Payload: models.TriggerPayload{
				"workspace": map[string]any{"id": entry.WorkspaceID},
				"schedule": map[string]any{
					"fired_at": time.Now().UTC().Format(time.RFC3339),
					"cron":     entry.CronExpr,
				},
			},
		}

		err := s.publisher.Publish(ctx, entry.WorkspaceID, event)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish scheduled trigger",
				"workspace_id", entry.WorkspaceID,
				"event_name", entry.EventName,
				"error", err)

			return
		}

		s.logger.InfoContext(ctx, "Scheduled trigger published",
			"workspace_id", entry.WorkspaceID,
			"event_name", entry.EventName)
	}
}
