// Package logresult provides the log_result action: formats a structured log
// record and emits it through the configured log sink. It always succeeds.
package logresult

import (
	"context"
	"log/slog"
	"time"

	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/protocol"
)

// Action emits one structured record per execution.
type Action struct {
	Message string
	Level   string
	Data    map[string]any

	sink protocol.LogSink
}

// NewAction creates a log_result action from its parameter map.
func NewAction(params map[string]any, sink protocol.LogSink) (*Action, error) {
	message, _ := params["message"].(string)

	level, _ := params["level"].(string)
	if level == "" {
		level = "info"
	}

	data, _ := params["data"].(map[string]any)

	return &Action{
		Message: message,
		Level:   level,
		Data:    data,
		sink:    sink,
	}, nil
}

// Execute formats the record and emits it. Sink failure is logged, not
// returned; log_result never fails the run.
func (a *Action) Execute(ctx context.Context, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", "log_result")

	record := protocol.LogRecord{
		Level:       a.Level,
		Message:     a.Message,
		Data:        a.Data,
		WorkflowID:  executionCtx.WorkflowID,
		ExecutionID: executionCtx.ID,
		Timestamp:   time.Now().UTC(),
	}

	if a.sink != nil {
		if err := a.sink.Emit(ctx, record); err != nil {
			logger.WarnContext(ctx, "Log sink rejected record", "error", err)
		}
	}

	logger.Log(ctx, slogLevel(a.Level), a.Message,
		"workflow_id", record.WorkflowID,
		"execution_id", record.ExecutionID,
		"data", a.Data)

	return map[string]any{
		"logged":  true,
		"level":   a.Level,
		"message": a.Message,
	}, nil
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
