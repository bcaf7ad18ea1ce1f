package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flowmill/flowmill/pkg/events"
	"github.com/flowmill/flowmill/pkg/models"
)

// Lifecycle event publication is best-effort: a bus failure never affects
// the run's outcome.

func (e *Engine) publishStarted(ctx context.Context, execCtx *models.ExecutionContext) {
	if e.bus == nil {
		return
	}

	e.publish(ctx, events.WorkflowExecutionStarted{
		BaseEvent:   e.baseEvent(events.WorkflowExecutionStartedEvent, execCtx.WorkflowID),
		ExecutionID: execCtx.ID,
	})
}

func (e *Engine) publishCompleted(ctx context.Context, execCtx *models.ExecutionContext, duration time.Duration) {
	if e.bus == nil {
		return
	}

	e.publish(ctx, events.WorkflowExecutionCompleted{
		BaseEvent:   e.baseEvent(events.WorkflowExecutionCompletedEvent, execCtx.WorkflowID),
		ExecutionID: execCtx.ID,
		DurationMS:  duration.Milliseconds(),
	})
}

func (e *Engine) publishFailed(ctx context.Context, execCtx *models.ExecutionContext, errMessage string, duration time.Duration) {
	if e.bus == nil {
		return
	}

	e.publish(ctx, events.WorkflowExecutionFailed{
		BaseEvent:   e.baseEvent(events.WorkflowExecutionFailedEvent, execCtx.WorkflowID),
		ExecutionID: execCtx.ID,
		Error:       errMessage,
		DurationMS:  duration.Milliseconds(),
	})
}

func (e *Engine) publishEscalated(ctx context.Context, workflowID string, recentErrors int) {
	if e.bus == nil {
		return
	}

	e.publish(ctx, events.WorkflowEscalated{
		BaseEvent:    e.baseEvent(events.WorkflowEscalatedEvent, workflowID),
		RecentErrors: recentErrors,
		Window:       e.escalation.Window,
	})
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if err := e.bus.Publish(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish lifecycle event",
			"event_type", event.GetType(), "error", err)
	}
}

func (e *Engine) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}
