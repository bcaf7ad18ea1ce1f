package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowmill/flowmill/pkg/eventbus"
	"github.com/flowmill/flowmill/pkg/persistence"
	"github.com/flowmill/flowmill/pkg/receivers/queue"
	"github.com/flowmill/flowmill/pkg/scheduler"
)

// Runner ties the scheduler, the engine and the optional queue receiver into
// one long-running service.
type Runner struct {
	id          string
	scheduler   *scheduler.Scheduler
	receiver    *queue.Receiver
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
}

func NewRunner(
	id string,
	schedulerInstance *scheduler.Scheduler,
	receiver *queue.Receiver,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		id:          id,
		scheduler:   schedulerInstance,
		receiver:    receiver,
		persistence: store,
		eventBus:    eventBus,
		logger:      logger.With("module", "runner", "runner_id", id),
	}
}

// Start runs until the context is cancelled or a termination signal arrives.
// SIGHUP reloads the workflow set without restarting timers from scratch.
func (r *Runner) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := r.scheduler.Start(runCtx); err != nil {
		return err
	}

	if r.receiver != nil {
		if err := r.receiver.Start(runCtx); err != nil {
			r.scheduler.Stop(runCtx)

			return err
		}
	}

	r.handleSignals(runCtx, cancel)

	<-runCtx.Done()
	r.logger.Info("Runner context cancelled, stopping")

	return nil
}

func (r *Runner) handleSignals(ctx context.Context, cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-signals:
				r.logger.Info("Received signal", "signal", sig)

				switch sig {
				case syscall.SIGHUP:
					if err := r.scheduler.ReloadWorkflows(ctx); err != nil {
						r.logger.Error("Failed to reload workflows", "error", err)
					}
				case syscall.SIGINT, syscall.SIGTERM:
					r.stop(ctx)
					cancel()

					return
				}
			}
		}
	}()
}

func (r *Runner) stop(ctx context.Context) {
	r.logger.Info("Shutting down gracefully")

	r.scheduler.Stop(ctx)

	if r.receiver != nil {
		if err := r.receiver.Stop(ctx); err != nil {
			r.logger.Error("Failed to stop queue receiver", "error", err)
		}
	}

	if r.eventBus != nil {
		if err := r.eventBus.Close(); err != nil {
			r.logger.Error("Failed to close event bus", "error", err)
		}
	}

	if err := r.persistence.Close(ctx); err != nil {
		r.logger.Error("Failed to close persistence", "error", err)
	}
}
