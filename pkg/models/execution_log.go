package models

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus is the state an execution-log entry records.
type ExecutionStatus string

const (
	ExecutionStatusRunning ExecutionStatus = "running"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusError   ExecutionStatus = "error"
)

// ExecutionLog is one append-only audit entry. Every run writes one "running"
// entry at start and exactly one terminal entry (success or error) at the
// end. A crash mid-run can leave a running entry with no terminal pair; that
// gap is accepted and never repaired silently.
type ExecutionLog struct {
	ID            string          `json:"id"`
	WorkflowID    string          `json:"workflow_id"`
	ExecutionID   string          `json:"execution_id"`
	Status        ExecutionStatus `json:"status"`
	Message       string          `json:"message,omitempty"`
	ExecutionTime time.Time       `json:"execution_time"`
	DurationMS    int64           `json:"duration_ms"`
}

// NewExecutionLog builds an entry stamped with the current time.
func NewExecutionLog(workflowID, executionID string, status ExecutionStatus, message string, duration time.Duration) *ExecutionLog {
	return &ExecutionLog{
		ID:            uuid.New().String(),
		WorkflowID:    workflowID,
		ExecutionID:   executionID,
		Status:        status,
		Message:       message,
		ExecutionTime: time.Now().UTC(),
		DurationMS:    duration.Milliseconds(),
	}
}
