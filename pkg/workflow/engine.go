// Package workflow contains the execution engine: it drives one workflow run
// action by action, keeps the running-execution registry, and applies the
// failure escalation policy.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowmill/flowmill/pkg/eventbus"
	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/otelhelper"
	"github.com/flowmill/flowmill/pkg/persistence"
	"github.com/flowmill/flowmill/pkg/registry"
)

var (
	// ErrWorkflowNotActive is returned in results for workflows whose status
	// is not active.
	ErrWorkflowNotActive = errors.New("workflow is not active")
	// ErrExecutionStopped marks a run ended by advisory cancellation between
	// actions.
	ErrExecutionStopped = errors.New("execution stopped")
)

// Engine orchestrates workflow runs. One Engine owns its running-execution
// registry exclusively; all access goes through its mutex because scheduler
// dispatch callbacks run on separate goroutines.
type Engine struct {
	workflows  persistence.WorkflowRepository
	executions persistence.ExecutionLogRepository
	registry   *registry.Registry
	logger     *slog.Logger

	bus        eventbus.EventBus
	tracer     trace.Tracer
	escalation EscalationPolicy

	// actionTimeout bounds a single action when non-zero. With the zero
	// default a hanging action blocks the whole run and its workflow's
	// subsequent ticks are skipped by single-flight.
	actionTimeout time.Duration

	mu      sync.Mutex
	running map[string]*models.ExecutionContext
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithEventBus makes the engine publish lifecycle events (best-effort).
func WithEventBus(bus eventbus.EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithTracer enables span emission per run and per action.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithEscalationPolicy overrides the default 3-of-last-5 escalation policy.
func WithEscalationPolicy(policy EscalationPolicy) Option {
	return func(e *Engine) { e.escalation = policy }
}

// WithActionTimeout bounds each action's context. Zero disables the bound.
func WithActionTimeout(timeout time.Duration) Option {
	return func(e *Engine) { e.actionTimeout = timeout }
}

func NewEngine(store persistence.Persistence, reg *registry.Registry, logger *slog.Logger, opts ...Option) *Engine {
	engine := &Engine{
		workflows:  store.WorkflowRepository(),
		executions: store.ExecutionLogRepository(),
		registry:   reg,
		logger:     logger.With("module", "workflow_engine"),
		escalation: DefaultEscalationPolicy(),
		running:    make(map[string]*models.ExecutionContext),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// ExecuteWorkflow runs one workflow end to end and always returns a result;
// callers never need error handling. Actions run strictly sequentially and
// the first failure stops the run (later actions are never invoked).
func (e *Engine) ExecuteWorkflow(ctx context.Context, workflowID string) *models.ActionResult {
	start := time.Now()
	logger := e.logger.With("workflow_id", workflowID)

	wf, err := e.workflows.WorkflowByID(ctx, workflowID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load workflow", "error", err)

		return failure(fmt.Errorf("failed to load workflow %s: %w", workflowID, err), start)
	}

	if !wf.IsActive() {
		logger.WarnContext(ctx, "Workflow is not active", "status", wf.Status)

		return failure(fmt.Errorf("workflow %s has status %s: %w", workflowID, wf.Status, ErrWorkflowNotActive), start)
	}

	execCtx := models.NewExecutionContext(workflowID, wf.Variables)
	logger = logger.With("execution_id", execCtx.ID)

	e.register(execCtx)
	defer e.deregister(execCtx.ID)

	var span trace.Span

	if e.tracer != nil {
		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
			attribute.String(otelhelper.WorkflowIDKey, workflowID),
			attribute.String(otelhelper.ExecutionIDKey, execCtx.ID),
		)
		defer span.End()
	}

	logger.InfoContext(ctx, "Starting workflow execution", "actions", len(wf.Actions))

	e.appendLog(ctx, logger, execCtx, models.ExecutionStatusRunning, "execution started", 0)
	e.publishStarted(ctx, execCtx)

	results := make([]models.ActionResult, 0, len(wf.Actions))

	var failed *models.ActionResult

	for i, action := range wf.Actions {
		if execCtx.Stopped() {
			logger.WarnContext(ctx, "Execution stopped before action", "action_index", i)

			stopped := failure(ErrExecutionStopped, start)
			failed = stopped

			break
		}

		result := e.runAction(ctx, action, execCtx, logger, i)
		results = append(results, result)

		if !result.Success {
			logger.WarnContext(ctx, "Action failed, stopping run",
				"action_index", i, "action_type", action.Type, "error", result.Error)

			failed = &result

			break
		}
	}

	duration := time.Since(start)
	data := map[string]any{
		"results":      results,
		"execution_id": execCtx.ID,
	}

	if failed == nil {
		logger.InfoContext(ctx, "Workflow execution completed",
			"actions", len(results), "duration_ms", duration.Milliseconds())

		e.appendLog(ctx, logger, execCtx, models.ExecutionStatusSuccess,
			fmt.Sprintf("completed %d actions", len(results)), duration)
		e.publishCompleted(ctx, execCtx, duration)

		return &models.ActionResult{
			Success:    true,
			Data:       data,
			DurationMS: duration.Milliseconds(),
		}
	}

	if span != nil {
		otelhelper.SetError(span, errors.New(failed.Error),
			attribute.String(otelhelper.WorkflowIDKey, workflowID))
	}

	e.appendLog(ctx, logger, execCtx, models.ExecutionStatusError, failed.Error, duration)
	e.publishFailed(ctx, execCtx, failed.Error, duration)
	e.escalateIfNeeded(ctx, workflowID, logger)

	return &models.ActionResult{
		Success:    false,
		Data:       data,
		Error:      failed.Error,
		DurationMS: duration.Milliseconds(),
	}
}

// runAction is the action-executor boundary: every error and panic inside an
// action is converted into a failed result and never propagates.
func (e *Engine) runAction(
	ctx context.Context,
	action *models.WorkflowAction,
	execCtx *models.ExecutionContext,
	logger *slog.Logger,
	index int,
) (result models.ActionResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Action panicked",
				"action_type", action.Type, "panic", r)

			result = models.ActionResult{
				Success:    false,
				Error:      fmt.Sprintf("action %s panicked: %v", action.Type, r),
				DurationMS: time.Since(start).Milliseconds(),
			}
		}
	}()

	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "workflow.action",
			attribute.String(otelhelper.ActionTypeKey, string(action.Type)),
			attribute.Int(otelhelper.ActionIndexKey, index),
		)
		defer span.End()
	}

	cancel := func() {}
	if e.actionTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.actionTimeout)
	}

	defer cancel()

	impl, err := e.registry.CreateAction(action.Type, action.Parameters)
	if err != nil {
		return models.ActionResult{
			Success:    false,
			Error:      err.Error(),
			DurationMS: time.Since(start).Milliseconds(),
		}
	}

	data, err := impl.Execute(ctx, execCtx, logger)
	if err != nil {
		return models.ActionResult{
			Success:    false,
			Error:      err.Error(),
			DurationMS: time.Since(start).Milliseconds(),
		}
	}

	return models.ActionResult{
		Success:    true,
		Data:       data,
		DurationMS: time.Since(start).Milliseconds(),
	}
}

// RunningExecutions returns a snapshot of the active executions, for
// introspection only.
func (e *Engine) RunningExecutions() []models.ExecutionSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshots := make([]models.ExecutionSnapshot, 0, len(e.running))
	for _, execCtx := range e.running {
		snapshots = append(snapshots, execCtx.Snapshot())
	}

	return snapshots
}

// StopExecution removes the execution from the registry and flags it for
// advisory cancellation. The in-flight action is not interrupted: the run
// completes its current action, then ends with an error terminal log. The
// return value reports whether the execution existed.
func (e *Engine) StopExecution(executionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	execCtx, ok := e.running[executionID]
	if !ok {
		return false
	}

	execCtx.MarkStopped()
	delete(e.running, executionID)

	return true
}

func (e *Engine) register(execCtx *models.ExecutionContext) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running[execCtx.ID] = execCtx
}

func (e *Engine) deregister(executionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, executionID)
}

// appendLog writes an execution-log entry; audit-trail failures are logged
// and do not fail the run.
func (e *Engine) appendLog(
	ctx context.Context,
	logger *slog.Logger,
	execCtx *models.ExecutionContext,
	status models.ExecutionStatus,
	message string,
	duration time.Duration,
) {
	entry := models.NewExecutionLog(execCtx.WorkflowID, execCtx.ID, status, message, duration)

	if err := e.executions.Append(ctx, entry); err != nil {
		logger.ErrorContext(ctx, "Failed to append execution log",
			"status", status, "error", err)
	}
}

func failure(err error, start time.Time) *models.ActionResult {
	return &models.ActionResult{
		Success:    false,
		Error:      err.Error(),
		DurationMS: time.Since(start).Milliseconds(),
	}
}
