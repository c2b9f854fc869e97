package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	pkgcmd "github.com/ninjagenz/automata/pkg/cmd"
	"github.com/ninjagenz/automata/pkg/log"
	"github.com/ninjagenz/automata/pkg/notifier/webhook"
	"github.com/ninjagenz/automata/pkg/scheduler/redisqueue"
)

func main() {
	command := &cli.Command{
		Name:                  "automata-worker",
		EnableShellCompletion: true,
		Usage:                 "Consume trigger events and execute automation rules",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for rule persistence (postgres:// or file://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "records-database-url",
				Usage:    "Workspace record store URL (postgres:// or file://), defaults to database-url",
				Required: false,
				Sources:  cli.EnvVars("RECORDS_DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "notification-url",
				Usage:    "Webhook endpoint notifications are posted to",
				Required: true,
				Sources:  cli.EnvVars("NOTIFICATION_URL"),
			},
			&cli.StringFlag{
				Name:     "redis-url",
				Usage:    "Redis URL for the delayed-execution queue",
				Required: true,
				Sources:  cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus provider (kafka, memory)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("automata-worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing Automata Worker")

			persist, err := pkgcmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persist.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			recordsURL := command.String("records-database-url")
			if recordsURL == "" {
				recordsURL = command.String("database-url")
			}

			updater, err := pkgcmd.NewRecordUpdater(ctx, logger, recordsURL)
			if err != nil {
				return err
			}
			defer func() {
				if err := updater.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close record store", "error", err)
				}
			}()

			scheduler, err := redisqueue.NewScheduler(ctx, logger, command.String("redis-url"))
			if err != nil {
				return err
			}
			defer func() {
				if err := scheduler.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close scheduler", "error", err)
				}
			}()

			notifier := webhook.NewNotifier(logger, command.String("notification-url"))
			reg := pkgcmd.NewRegistry(logger, notifier, updater, scheduler)

			eventBus := pkgcmd.NewEventBus(command.String("event-bus"), "automata-worker", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			worker := NewWorkerManager(workerID, persist, eventBus, scheduler, logger, reg)

			if err := worker.Start(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to start event-driven worker", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
