// Package queue provides the redis-backed receiver for event-triggered
// workflows: messages of the form {"workflow_id": "..."} popped from a redis
// list start engine runs for active workflows with an event trigger.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/persistence"
)

// Executor is the engine surface the receiver dispatches to.
type Executor interface {
	ExecuteWorkflow(ctx context.Context, workflowID string) *models.ActionResult
}

// Receiver consumes one redis list and dispatches event-triggered workflows.
type Receiver struct {
	Addr     string
	Password string
	DB       int
	Queue    string

	engine    Executor
	workflows persistence.WorkflowRepository
	client    redis.UniversalClient
	logger    *slog.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewReceiver creates a receiver from configuration. Supported keys: addr
// (default localhost:6379), password, db, queue (required).
func NewReceiver(
	config map[string]string,
	engine Executor,
	workflows persistence.WorkflowRepository,
	logger *slog.Logger,
) (*Receiver, error) {
	queue := config["queue"]
	if queue == "" {
		return nil, errors.New("queue receiver requires a queue name")
	}

	addr := config["addr"]
	if addr == "" {
		addr = "localhost:6379"
	}

	db := 0

	if dbStr := config["db"]; dbStr != "" {
		parsed, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid db value %q: %w", dbStr, err)
		}

		db = parsed
	}

	return &Receiver{
		Addr:      addr,
		Password:  config["password"],
		DB:        db,
		Queue:     queue,
		engine:    engine,
		workflows: workflows,
		stopCh:    make(chan struct{}),
		logger: logger.With(
			"module", "queue_receiver",
			"queue", queue,
		),
	}, nil
}

// Start connects to redis and begins consuming.
func (r *Receiver) Start(ctx context.Context) error {
	r.logger.InfoContext(ctx, "Starting queue receiver")

	r.client = redis.NewClient(&redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	r.wg.Add(1)

	go r.consume(ctx)

	return nil
}

func (r *Receiver) consume(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			r.logger.InfoContext(ctx, "Queue receiver stopped")

			return
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "Context cancelled, stopping queue receiver")

			return
		default:
			if err := r.processMessage(ctx); err != nil {
				r.logger.ErrorContext(ctx, "Error processing queue message", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (r *Receiver) processMessage(ctx context.Context) error {
	result, err := r.client.BLPop(ctx, 1*time.Second, r.Queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	var payload struct {
		WorkflowID string `json:"workflow_id"`
	}

	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		r.logger.WarnContext(ctx, "Discarding malformed queue message", "error", err)

		return nil
	}

	if payload.WorkflowID == "" {
		r.logger.WarnContext(ctx, "Discarding queue message without workflow_id")

		return nil
	}

	wf, err := r.workflows.WorkflowByID(ctx, payload.WorkflowID)
	if err != nil {
		r.logger.WarnContext(ctx, "Queue message for unknown workflow",
			"workflow_id", payload.WorkflowID, "error", err)

		return nil
	}

	if wf.Trigger.Type != models.TriggerTypeEvent {
		r.logger.WarnContext(ctx, "Queue message for workflow without event trigger",
			"workflow_id", wf.ID, "trigger_type", wf.Trigger.Type)

		return nil
	}

	go func() {
		result := r.engine.ExecuteWorkflow(ctx, payload.WorkflowID)
		if !result.Success {
			r.logger.ErrorContext(ctx, "Event-triggered execution failed",
				"workflow_id", payload.WorkflowID, "error", result.Error)
		}
	}()

	return nil
}

// Stop shuts the consumer down and closes the redis client.
func (r *Receiver) Stop(ctx context.Context) error {
	r.logger.InfoContext(ctx, "Stopping queue receiver")

	close(r.stopCh)
	r.wg.Wait()

	if r.client != nil {
		if err := r.client.Close(); err != nil {
			r.logger.ErrorContext(ctx, "Error closing redis client", "error", err)
		}
	}

	return nil
}
