package postgresql

import (
	"testing"
	"time"

	"github.com/flowmill/flowmill/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_CoverEveryVersion(t *testing.T) {
	all := migrations()

	for version := 1; version <= currentSchemaVersion; version++ {
		_, ok := all[version]
		assert.True(t, ok, "missing migration for version %d", version)
	}
}

type fakeRow struct {
	values []any
}

func (r *fakeRow) Scan(dest ...any) error {
	for i, value := range r.values {
		switch target := dest[i].(type) {
		case *string:
			*target = value.(string)
		case *[]byte:
			*target = value.([]byte)
		case *time.Time:
			*target = value.(time.Time)
		}
	}

	return nil
}

func TestScanWorkflow_DecodesJSONColumns(t *testing.T) {
	now := time.Now().UTC()
	row := &fakeRow{values: []any{
		"wf-1",
		"Nightly Report",
		"generates the nightly report",
		[]byte(`{"type":"cron","schedule":"0 2 * * *"}`),
		[]byte(`[{"type":"generate_report","parameters":{"format":"json"}}]`),
		"active",
		[]byte(`{"region":"eu"}`),
		"ops",
		now,
		now,
	}}

	workflow, err := scanWorkflow(row)
	require.NoError(t, err)

	assert.Equal(t, "wf-1", workflow.ID)
	assert.Equal(t, models.WorkflowStatusActive, workflow.Status)
	assert.Equal(t, models.TriggerTypeCron, workflow.Trigger.Type)
	assert.Equal(t, "0 2 * * *", workflow.Trigger.Schedule)
	require.Len(t, workflow.Actions, 1)
	assert.Equal(t, models.ActionTypeGenerateReport, workflow.Actions[0].Type)
	assert.Equal(t, "eu", workflow.Variables["region"])
}

func TestScanWorkflow_InvalidTriggerJSON(t *testing.T) {
	now := time.Now().UTC()
	row := &fakeRow{values: []any{
		"wf-2", "Broken", "", []byte(`{not json`), []byte(`[]`), "paused", []byte(`{}`), "", now, now,
	}}

	_, err := scanWorkflow(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal trigger")
}
