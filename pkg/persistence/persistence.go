// Package persistence provides the data storage contracts consumed by the
// engine, the scheduler, and the check_system_metrics action.
package persistence

import (
	"context"

	"github.com/flowmill/flowmill/pkg/models"
)

// WorkflowRepository stores workflow definitions. WorkflowByID returns
// ErrWorkflowNotFound when no workflow exists for the id.
type WorkflowRepository interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	ActiveWorkflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	UpdateWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus) error
	DeleteWorkflow(ctx context.Context, id string) error
}

// ExecutionLogRepository stores append-only execution-log entries.
// RecentForWorkflow returns up to limit entries ordered by execution time,
// newest first.
type ExecutionLogRepository interface {
	Append(ctx context.Context, entry *models.ExecutionLog) error
	RecentForWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.ExecutionLog, error)
}

// MetricsRepository stores host metrics samples taken by workflow actions.
type MetricsRepository interface {
	AppendSample(ctx context.Context, sample *models.MetricsSample) error
	RecentSamples(ctx context.Context, limit int) ([]*models.MetricsSample, error)
}

// Persistence aggregates the repositories behind one driver instance.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionLogRepository() ExecutionLogRepository
	MetricsRepository() MetricsRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
