package workflow

import (
	"context"
	"log/slog"

	"github.com/flowmill/flowmill/pkg/models"
)

// Escalation defaults: a workflow is parked when at least
// DefaultEscalationThreshold of its DefaultEscalationWindow most recent log
// entries are errors.
const (
	DefaultEscalationWindow    = 5
	DefaultEscalationThreshold = 3
)

// EscalationPolicy is the self-protection rule applied after failed runs.
type EscalationPolicy struct {
	// Window is how many recent execution-log entries to inspect.
	Window int
	// Threshold is the error count within the window that parks the
	// workflow with status error.
	Threshold int
}

func DefaultEscalationPolicy() EscalationPolicy {
	return EscalationPolicy{
		Window:    DefaultEscalationWindow,
		Threshold: DefaultEscalationThreshold,
	}
}

// escalateIfNeeded runs after every failed run: when the recent window holds
// enough errors, the workflow status is set to error, which keeps the
// scheduler from registering it again.
func (e *Engine) escalateIfNeeded(ctx context.Context, workflowID string, logger *slog.Logger) {
	entries, err := e.executions.RecentForWorkflow(ctx, workflowID, e.escalation.Window)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load recent execution logs for escalation", "error", err)

		return
	}

	errorCount := 0

	for _, entry := range entries {
		if entry.Status == models.ExecutionStatusError {
			errorCount++
		}
	}

	if errorCount < e.escalation.Threshold {
		return
	}

	logger.WarnContext(ctx, "Escalating workflow to error status",
		"recent_errors", errorCount, "window", e.escalation.Window)

	if err := e.workflows.UpdateWorkflowStatus(ctx, workflowID, models.WorkflowStatusError); err != nil {
		logger.ErrorContext(ctx, "Failed to update workflow status during escalation", "error", err)

		return
	}

	e.publishEscalated(ctx, workflowID, errorCount)
}
