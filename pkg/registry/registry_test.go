package registry_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmill/flowmill/pkg/actions/fetchdata"
	"github.com/flowmill/flowmill/pkg/actions/logresult"
	"github.com/flowmill/flowmill/pkg/actions/report"
	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/registry"
)

func newTestRegistry() *registry.Registry {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := registry.NewRegistry(logger)
	reg.RegisterAction(fetchdata.NewFactory())
	reg.RegisterAction(report.NewFactory())
	reg.RegisterAction(logresult.NewFactory(nil))

	return reg
}

func TestRegistry_CreateAction(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	action, err := reg.CreateAction(models.ActionTypeFetchData, map[string]any{"url": "http://example.com"})
	require.NoError(t, err)
	assert.NotNil(t, action)
}

func TestRegistry_CreateAction_UnknownType(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	_, err := reg.CreateAction(models.ActionType("teleport_data"), nil)
	require.ErrorIs(t, err, registry.ErrUnknownActionType)
}

func TestRegistry_ActionTypes(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	assert.ElementsMatch(t,
		[]string{"fetch_data", "generate_report", "log_result"},
		reg.ActionTypes())
}

func TestRegistry_ValidateParameters(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	t.Run("valid parameters", func(t *testing.T) {
		t.Parallel()

		err := reg.ValidateParameters(models.ActionTypeFetchData, map[string]any{"url": "http://example.com"})
		assert.NoError(t, err)
	})

	t.Run("missing required parameter", func(t *testing.T) {
		t.Parallel()

		err := reg.ValidateParameters(models.ActionTypeFetchData, map[string]any{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "url")
	})

	t.Run("unknown action type", func(t *testing.T) {
		t.Parallel()

		err := reg.ValidateParameters(models.ActionType("nope"), nil)
		assert.ErrorIs(t, err, registry.ErrUnknownActionType)
	})
}

func TestRegistry_ValidateWorkflowActions(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	valid := &models.Workflow{
		Actions: []*models.WorkflowAction{
			{Type: models.ActionTypeFetchData, Parameters: map[string]any{"url": "http://example.com"}},
			{Type: models.ActionTypeLogResult, Parameters: map[string]any{"message": "done"}},
		},
	}
	assert.NoError(t, reg.ValidateWorkflowActions(valid))

	invalid := &models.Workflow{
		Actions: []*models.WorkflowAction{
			{Type: models.ActionTypeLogResult},
			{Type: models.ActionTypeFetchData, Parameters: map[string]any{}},
		},
	}

	err := reg.ValidateWorkflowActions(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action 1")
}
