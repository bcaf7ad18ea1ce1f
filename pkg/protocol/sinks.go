package protocol

import (
	"context"
	"time"

	"github.com/flowmill/flowmill/pkg/models"
)

// EmailMessage is the payload handed to a notification sink by send_email.
type EmailMessage struct {
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
	WorkflowID  string   `json:"workflow_id"`
	ExecutionID string   `json:"execution_id"`
}

// LogRecord is the structured record emitted by log_result.
type LogRecord struct {
	Level       string         `json:"level"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	WorkflowID  string         `json:"workflow_id"`
	ExecutionID string         `json:"execution_id"`
	Timestamp   time.Time      `json:"timestamp"`
}

// NotificationSink delivers outbound notifications. Emission is best-effort:
// a sink failure never fails the action that used it.
type NotificationSink interface {
	SendEmail(ctx context.Context, message EmailMessage) error
}

// LogSink receives log_result records. Best-effort, like NotificationSink.
type LogSink interface {
	Emit(ctx context.Context, record LogRecord) error
}

// MetricsStore persists host metrics samples for check_system_metrics.
type MetricsStore interface {
	RecordSample(ctx context.Context, sample *models.MetricsSample) error
}
