package models

// ActionType identifies the kind of a workflow action.
type ActionType string

const (
	ActionTypeFetchData          ActionType = "fetch_data"
	ActionTypeGenerateReport     ActionType = "generate_report"
	ActionTypeSendEmail          ActionType = "send_email"
	ActionTypeCheckSystemMetrics ActionType = "check_system_metrics"
	ActionTypeLogResult          ActionType = "log_result"
)

// WorkflowAction is one typed, parameterized step within a workflow.
// Parameters is an open string-keyed map; required keys are enforced per
// action kind by the action implementations. Actions are immutable once part
// of the workflow snapshot used for a run.
type WorkflowAction struct {
	Type       ActionType     `json:"type" validate:"required"`
	Parameters map[string]any `json:"parameters"`
}

// ActionResult is produced exactly once per executed action. Failures are
// carried in Error; an action is never retried automatically.
type ActionResult struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}
