// Package main provides the Automata scheduler, which emits recurring trigger
// events (weekly digests, SLA sweeps) onto the event bus from cron entries.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	pkgcmd "github.com/ninjagenz/automata/pkg/cmd"
	"github.com/ninjagenz/automata/pkg/log"
)

func main() {
	logger := log.WithModule("scheduler")

	command := &cli.Command{
		Name:                  "automata-scheduler",
		EnableShellCompletion: true,
		Usage:                 "Emit recurring trigger events from cron entries",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "entry",
				Aliases:  []string{"e"},
				Usage:    "Schedule entry as <workspace_id>:<event_name>=<cron expr>, repeatable",
				Required: true,
				Sources:  cli.EnvVars("SCHEDULE_ENTRIES"),
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

			logger.InfoContext(ctx, "Initializing Automata Scheduler")

			entries, err := ParseEntries(command.StringSlice("entry"))
			if err != nil {
				return err
			}

			eventBus := pkgcmd.NewEventBus(command.String("event-bus"), "automata-scheduler", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			scheduler := NewSchedulerManager(logger, eventBus, entries)

			return scheduler.Start(ctx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
