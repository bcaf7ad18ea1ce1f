// Package web provides HTTP request and response types for the workflow API.
package web

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string          `json:"name"                validate:"required,min=3"`
	Description string          `json:"description"`
	Trigger     TriggerRequest  `json:"trigger"             validate:"required"`
	Actions     []ActionRequest `json:"actions"`
	Status      string          `json:"status,omitempty"    validate:"omitempty,oneof=active paused error"`
	Variables   map[string]any  `json:"variables,omitempty"`
	Owner       string          `json:"owner,omitempty"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow. All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name        *string         `json:"name,omitempty"      validate:"omitempty,min=3"`
	Description *string         `json:"description,omitempty"`
	Trigger     *TriggerRequest `json:"trigger,omitempty"`
	Actions     []ActionRequest `json:"actions,omitempty"`
	Status      *string         `json:"status,omitempty"    validate:"omitempty,oneof=active paused error"`
	Variables   map[string]any  `json:"variables,omitempty"`
}

// TriggerRequest describes how a workflow run starts.
type TriggerRequest struct {
	Type     string `json:"type"               validate:"required,oneof=cron manual event"`
	Schedule string `json:"schedule,omitempty"`
}

// ActionRequest is one typed action in a workflow definition.
type ActionRequest struct {
	Type       string         `json:"type"       validate:"required"`
	Parameters map[string]any `json:"parameters"`
}

// TriggerResponse is returned when a workflow execution is started by hand.
type TriggerResponse struct {
	WorkflowID  string `json:"workflow_id"`
	ExecutionID string `json:"execution_id,omitempty"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}
