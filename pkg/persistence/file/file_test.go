package file_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/persistence"
	"github.com/flowmill/flowmill/pkg/persistence/file"
)

func testWorkflow(id string, status models.WorkflowStatus) *models.Workflow {
	return &models.Workflow{
		ID:   id,
		Name: "Nightly report",
		Trigger: models.Trigger{
			Type:     models.TriggerTypeCron,
			Schedule: "0 2 * * *",
		},
		Actions: []*models.WorkflowAction{
			{Type: "log_result", Parameters: map[string]any{"message": "done"}},
		},
		Status:    status,
		Variables: map[string]any{"region": "eu"},
	}
}

func TestWorkflowRepository_SaveAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())
	repo := store.WorkflowRepository()

	workflow := testWorkflow("wf-1", models.WorkflowStatusActive)
	require.NoError(t, repo.SaveWorkflow(ctx, workflow))
	assert.False(t, workflow.CreatedAt.IsZero())
	assert.False(t, workflow.UpdatedAt.IsZero())

	loaded, err := repo.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Nightly report", loaded.Name)
	assert.Equal(t, models.TriggerTypeCron, loaded.Trigger.Type)
	assert.Equal(t, "0 2 * * *", loaded.Trigger.Schedule)
	require.Len(t, loaded.Actions, 1)
	assert.Equal(t, models.ActionTypeLogResult, loaded.Actions[0].Type)
	assert.Equal(t, "eu", loaded.Variables["region"])
}

func TestWorkflowRepository_NotFound(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())

	_, err := store.WorkflowRepository().WorkflowByID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowRepository_ActiveWorkflows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())
	repo := store.WorkflowRepository()

	require.NoError(t, repo.SaveWorkflow(ctx, testWorkflow("wf-active", models.WorkflowStatusActive)))
	require.NoError(t, repo.SaveWorkflow(ctx, testWorkflow("wf-paused", models.WorkflowStatusPaused)))
	require.NoError(t, repo.SaveWorkflow(ctx, testWorkflow("wf-error", models.WorkflowStatusError)))

	all, err := repo.Workflows(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := repo.ActiveWorkflows(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "wf-active", active[0].ID)
}

func TestWorkflowRepository_UpdateWorkflowStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())
	repo := store.WorkflowRepository()

	require.NoError(t, repo.SaveWorkflow(ctx, testWorkflow("wf-1", models.WorkflowStatusActive)))
	require.NoError(t, repo.UpdateWorkflowStatus(ctx, "wf-1", models.WorkflowStatusError))

	loaded, err := repo.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusError, loaded.Status)

	err = repo.UpdateWorkflowStatus(ctx, "missing", models.WorkflowStatusPaused)
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestWorkflowRepository_DeleteWorkflow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())
	repo := store.WorkflowRepository()

	require.NoError(t, repo.SaveWorkflow(ctx, testWorkflow("wf-1", models.WorkflowStatusActive)))
	require.NoError(t, repo.DeleteWorkflow(ctx, "wf-1"))

	_, err := repo.WorkflowByID(ctx, "wf-1")
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	// Deleting a workflow that is already gone is not an error.
	assert.NoError(t, repo.DeleteWorkflow(ctx, "wf-1"))
}

func TestExecutionLogRepository_AppendAndRecent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())
	repo := store.ExecutionLogRepository()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	statuses := []models.ExecutionStatus{
		models.ExecutionStatusRunning,
		models.ExecutionStatusSuccess,
		models.ExecutionStatusRunning,
		models.ExecutionStatusError,
	}

	for i, status := range statuses {
		entry := models.NewExecutionLog("wf-1", "exec-abc", status, "", 0)
		entry.ExecutionTime = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Append(ctx, entry))
	}

	entries, err := repo.RecentForWorkflow(ctx, "wf-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, models.ExecutionStatusError, entries[0].Status)
	assert.Equal(t, models.ExecutionStatusRunning, entries[3].Status)

	limited, err := repo.RecentForWorkflow(ctx, "wf-1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, models.ExecutionStatusError, limited[0].Status)
	assert.Equal(t, models.ExecutionStatusRunning, limited[1].Status)
}

func TestExecutionLogRepository_EmptyWorkflow(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())

	entries, err := store.ExecutionLogRepository().RecentForWorkflow(context.Background(), "never-ran", 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMetricsRepository_AppendAndRecent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())
	repo := store.MetricsRepository()

	for i := range 5 {
		sample := &models.MetricsSample{
			CPUPercent:    float64(10 * i),
			MemoryPercent: 50,
			MemoryUsed:    4 << 30,
			MemoryTotal:   8 << 30,
			SampledAt:     time.Date(2025, 3, 1, 12, i, 0, 0, time.UTC),
		}
		require.NoError(t, repo.AppendSample(ctx, sample))
	}

	samples, err := repo.RecentSamples(ctx, 3)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.InDelta(t, 20.0, samples[0].CPUPercent, 0.001)
	assert.InDelta(t, 40.0, samples[2].CPUPercent, 0.001)
	assert.Equal(t, uint64(8<<30), samples[0].MemoryTotal)
}

func TestPersistence_HealthCheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store := file.NewPersistence(t.TempDir())
	assert.NoError(t, store.HealthCheck(ctx))
	assert.NoError(t, store.Close(ctx))

	missing := file.NewPersistence("/nonexistent/flowmill-data")
	assert.Error(t, missing.HealthCheck(ctx))
}

func TestNewPersistence_StripsFileScheme(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := file.NewPersistence("file://" + root)

	assert.NoError(t, store.HealthCheck(context.Background()))
}
