// Package events defines the event types published on the workflow
// lifecycle bus.
package events

import (
	"time"

	"github.com/flowmill/flowmill/pkg/protocol"
)

type EventType string

// Topic carries every flowmill event.
const Topic = "flowmill.events"

const (
	WorkflowExecutionStartedEvent   EventType = "workflow.execution.started"
	WorkflowExecutionCompletedEvent EventType = "workflow.execution.completed"
	WorkflowExecutionFailedEvent    EventType = "workflow.execution.failed"
	WorkflowEscalatedEvent          EventType = "workflow.escalated"
	EmailRequestedEvent             EventType = "notification.email.requested"
	LogRecordEvent                  EventType = "workflow.log.record"
)

// Event is implemented by everything published on the bus.
type Event interface {
	GetType() EventType
}

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
}

type WorkflowExecutionStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
}

func (e WorkflowExecutionStarted) GetType() EventType { return WorkflowExecutionStartedEvent }

type WorkflowExecutionCompleted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	DurationMS  int64  `json:"duration_ms"`
}

func (e WorkflowExecutionCompleted) GetType() EventType { return WorkflowExecutionCompletedEvent }

type WorkflowExecutionFailed struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	Error       string `json:"error"`
	DurationMS  int64  `json:"duration_ms"`
}

func (e WorkflowExecutionFailed) GetType() EventType { return WorkflowExecutionFailedEvent }

// WorkflowEscalated records the escalation policy parking a workflow.
type WorkflowEscalated struct {
	BaseEvent

	RecentErrors int `json:"recent_errors"`
	Window       int `json:"window"`
}

func (e WorkflowEscalated) GetType() EventType { return WorkflowEscalatedEvent }

// EmailRequested is the notification sink's outbound payload.
type EmailRequested struct {
	BaseEvent

	Message protocol.EmailMessage `json:"message"`
}

func (e EmailRequested) GetType() EventType { return EmailRequestedEvent }

// LogRecord carries a log_result record over the bus.
type LogRecord struct {
	BaseEvent

	Record protocol.LogRecord `json:"record"`
}

func (e LogRecord) GetType() EventType { return LogRecordEvent }
