// Package main provides the Flowmill scheduler service: it owns the cron
// timers, dispatches workflow runs, and optionally consumes an event queue.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/flowmill/flowmill/pkg/cmd"
	"github.com/flowmill/flowmill/pkg/log"
	"github.com/flowmill/flowmill/pkg/otelhelper"
	"github.com/flowmill/flowmill/pkg/receivers/queue"
	"github.com/flowmill/flowmill/pkg/scheduler"
	"github.com/flowmill/flowmill/pkg/workflow"
)

func main() {
	command := &cli.Command{
		Name:                  "flowmill-scheduler",
		Usage:                 "Start the Flowmill workflow scheduler service",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "scheduler-id",
				Aliases: []string{"id"},
				Usage:   "Custom scheduler ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("SCHEDULER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file:// or postgres://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the event trigger queue",
				Value:   "localhost:6379",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "event-queue",
				Usage:   "Redis list to consume event triggers from (disabled when empty)",
				Value:   "",
				Sources: cli.EnvVars("EVENT_QUEUE"),
			},
			&cli.DurationFlag{
				Name:    "action-timeout",
				Usage:   "Per-action execution timeout (0 disables the bound)",
				Value:   0,
				Sources: cli.EnvVars("ACTION_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry trace export",
				Value:   false,
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	schedulerID := command.String("scheduler-id")
	if schedulerID == "" {
		schedulerID = fmt.Sprintf("scheduler-%s", uuid.New().String()[:8])
	}

	logger := log.WithModule("flowmill-scheduler").With("scheduler_id", schedulerID)
	logger.InfoContext(ctx, "Initializing Flowmill scheduler")

	store := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	eventBus := cmd.NewEventBus(command.String("event-bus"), "flowmill-scheduler", logger)
	registry := cmd.NewRegistry(logger, eventBus, store)

	engineOpts := []workflow.Option{workflow.WithEventBus(eventBus)}

	if timeout := command.Duration("action-timeout"); timeout > 0 {
		engineOpts = append(engineOpts, workflow.WithActionTimeout(timeout))
	}

	if command.Bool("tracing") {
		tracerProvider, err := otelhelper.InitTracer(ctx, "flowmill-scheduler")
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			if err := tracerProvider.Shutdown(ctx); err != nil {
				slog.Error("Failed to shutdown tracer provider", "error", err)
			}
		}()

		engineOpts = append(engineOpts, workflow.WithTracer(tracerProvider.Tracer("flowmill-scheduler")))
	}

	engine := workflow.NewEngine(store, registry, logger, engineOpts...)
	schedulerInstance := scheduler.NewScheduler(engine, store.WorkflowRepository(), logger)

	var receiver *queue.Receiver

	if queueName := command.String("event-queue"); queueName != "" {
		var err error

		receiver, err = queue.NewReceiver(map[string]string{
			"addr":  command.String("redis-addr"),
			"queue": queueName,
		}, engine, store.WorkflowRepository(), logger)
		if err != nil {
			return fmt.Errorf("failed to create queue receiver: %w", err)
		}
	}

	runner := NewRunner(schedulerID, schedulerInstance, receiver, store, eventBus, logger)

	return runner.Start(ctx)
}
