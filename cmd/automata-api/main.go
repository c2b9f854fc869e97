package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	pkgcmd "github.com/ninjagenz/automata/pkg/cmd"
	"github.com/ninjagenz/automata/pkg/engine"
	"github.com/ninjagenz/automata/pkg/log"
	"github.com/ninjagenz/automata/pkg/notifier/webhook"
	"github.com/ninjagenz/automata/pkg/protocol"
	"github.com/ninjagenz/automata/pkg/scheduler/redisqueue"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "automata-api",
		Usage:                 "Create and manage automation rules, fire trigger events",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
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
				Usage:    "Redis URL for the delayed-execution queue, delays run immediately when unset",
				Required: false,
				Sources:  cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, memory)",
				Value:   "memory",
				Sources: cli.EnvVars("EVENT_BUS"),
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

			logger.InfoContext(ctx, "Initializing Automata API")

			persist, err := pkgcmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := persist.Close(ctx)
				if err != nil {
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

			var scheduler protocol.ContinuationScheduler

			if redisURL := command.String("redis-url"); redisURL != "" {
				redisScheduler, err := redisqueue.NewScheduler(ctx, logger, redisURL)
				if err != nil {
					return err
				}

				defer func() {
					if err := redisScheduler.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close scheduler", "error", err)
					}
				}()

				scheduler = redisScheduler
			}

			notifier := webhook.NewNotifier(logger, command.String("notification-url"))
			reg := pkgcmd.NewRegistry(logger, notifier, updater, scheduler)

			eventBus := pkgcmd.NewEventBus(command.String("event-bus"), "automata-api", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			eng := engine.New(logger, persist.RuleRepository(), reg, engine.WithPublisher(eventBus))

			api := NewAPI(logger, persist, reg, eng)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
