package models

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ExecutionContext is the per-run value object owned by a single engine run.
// Variables is the shared store written by one action (storeAs) and read by
// later actions of the same run; it is destroyed when the run ends.
type ExecutionContext struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	StartTime  time.Time      `json:"start_time"`
	Variables  map[string]any `json:"variables,omitempty"`

	mu      sync.Mutex
	stopped bool
}

// NewExecutionContext creates a context for one run, seeding Variables from
// the workflow-level variable map.
func NewExecutionContext(workflowID string, seed map[string]any) *ExecutionContext {
	variables := make(map[string]any, len(seed))
	for k, v := range seed {
		variables[k] = v
	}

	return &ExecutionContext{
		ID:         generateExecutionID(),
		WorkflowID: workflowID,
		StartTime:  time.Now().UTC(),
		Variables:  variables,
	}
}

// SetVariable stores a value under name for later actions of the same run.
func (c *ExecutionContext) SetVariable(name string, value any) {
	c.Variables[name] = value
}

// MarkStopped flags the run for advisory cancellation. The in-flight action
// is not interrupted; the engine checks the flag between actions.
func (c *ExecutionContext) MarkStopped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
}

// Stopped reports whether advisory cancellation was requested.
func (c *ExecutionContext) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stopped
}

// Snapshot returns a copy safe to hand out for introspection.
func (c *ExecutionContext) Snapshot() ExecutionSnapshot {
	return ExecutionSnapshot{
		ID:         c.ID,
		WorkflowID: c.WorkflowID,
		StartTime:  c.StartTime,
	}
}

// ExecutionSnapshot is the introspection view of a running execution.
type ExecutionSnapshot struct {
	ID         string    `json:"id"`
	WorkflowID string    `json:"workflow_id"`
	StartTime  time.Time `json:"start_time"`
}

func generateExecutionID() string {
	return fmt.Sprintf("exec-%s", uuid.New().String()[:8])
}
