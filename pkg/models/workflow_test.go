package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validWorkflow() *Workflow {
	return &Workflow{
		ID:      "wf-1",
		Name:    "Daily Report",
		Trigger: Trigger{Type: TriggerTypeCron, Schedule: "0 9 * * *"},
		Actions: []*WorkflowAction{
			{Type: ActionTypeGenerateReport, Parameters: map[string]any{"format": "json"}},
		},
		Status: WorkflowStatusActive,
	}
}

func TestWorkflow_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid workflow", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validWorkflow().Validate())
	})

	t.Run("name too short", func(t *testing.T) {
		t.Parallel()

		wf := validWorkflow()
		wf.Name = "ab"
		assert.Error(t, wf.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()

		wf := validWorkflow()
		wf.Name = ""
		assert.Error(t, wf.Validate())
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()

		wf := validWorkflow()
		wf.Status = WorkflowStatus("archived")
		assert.Error(t, wf.Validate())
	})
}

func TestTrigger_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		trigger Trigger
		wantErr error
	}{
		{
			name:    "manual trigger needs no schedule",
			trigger: Trigger{Type: TriggerTypeManual},
		},
		{
			name:    "event trigger needs no schedule",
			trigger: Trigger{Type: TriggerTypeEvent},
		},
		{
			name:    "cron trigger with valid schedule",
			trigger: Trigger{Type: TriggerTypeCron, Schedule: "*/5 * * * *"},
		},
		{
			name:    "cron trigger without schedule",
			trigger: Trigger{Type: TriggerTypeCron},
			wantErr: ErrScheduleRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.trigger.Validate()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("cron trigger with malformed schedule", func(t *testing.T) {
		t.Parallel()

		trigger := Trigger{Type: TriggerTypeCron, Schedule: "not a cron line"}
		assert.Error(t, trigger.Validate())
	})
}

func TestTrigger_NextFireTime(t *testing.T) {
	t.Parallel()

	trigger := Trigger{Type: TriggerTypeCron, Schedule: "0 9 * * *"}
	ref := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	next, err := trigger.NextFireTime(ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), next)

	afterNine := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	next, err = trigger.NextFireTime(afterNine)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC), next)
}

func TestWorkflow_Schedulable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Workflow)
		expected bool
	}{
		{
			name:     "active cron workflow",
			mutate:   func(*Workflow) {},
			expected: true,
		},
		{
			name:     "paused workflow",
			mutate:   func(wf *Workflow) { wf.Status = WorkflowStatusPaused },
			expected: false,
		},
		{
			name:     "errored workflow",
			mutate:   func(wf *Workflow) { wf.Status = WorkflowStatusError },
			expected: false,
		},
		{
			name:     "manual trigger",
			mutate:   func(wf *Workflow) { wf.Trigger = Trigger{Type: TriggerTypeManual} },
			expected: false,
		},
		{
			name:     "cron trigger without schedule",
			mutate:   func(wf *Workflow) { wf.Trigger.Schedule = "" },
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wf := validWorkflow()
			tt.mutate(wf)
			assert.Equal(t, tt.expected, wf.Schedulable())
		})
	}
}
