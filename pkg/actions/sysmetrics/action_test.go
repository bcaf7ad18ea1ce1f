package sysmetrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmill/flowmill/pkg/models"
)

type fixedSampler struct {
	sample *models.MetricsSample
	err    error
}

func (s *fixedSampler) Sample(_ context.Context) (*models.MetricsSample, error) {
	return s.sample, s.err
}

type captureStore struct {
	samples []*models.MetricsSample
	err     error
}

func (s *captureStore) RecordSample(_ context.Context, sample *models.MetricsSample) error {
	s.samples = append(s.samples, sample)

	return s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAction_Execute_RecordsSample(t *testing.T) {
	t.Parallel()

	sampler := &fixedSampler{sample: &models.MetricsSample{
		CPUPercent:    42.0,
		MemoryPercent: 55.5,
		MemoryUsed:    4 << 30,
		MemoryTotal:   8 << 30,
	}}
	store := &captureStore{}

	action, err := NewAction(map[string]any{"storeAs": "host_metrics"}, sampler, store)
	require.NoError(t, err)

	execCtx := models.NewExecutionContext("wf-1", nil)

	data, err := action.Execute(context.Background(), execCtx, testLogger())
	require.NoError(t, err)

	require.Len(t, store.samples, 1)
	assert.False(t, store.samples[0].SampledAt.IsZero())

	result := data.(map[string]any)
	assert.Empty(t, result["alerts"])
	assert.Equal(t, result, execCtx.Variables["host_metrics"])
}

func TestAction_Execute_ThresholdAlerts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		sample     *models.MetricsSample
		thresholds map[string]any
		expected   []string
	}{
		{
			name:       "cpu above threshold",
			sample:     &models.MetricsSample{CPUPercent: 92.3, MemoryPercent: 40},
			thresholds: map[string]any{"cpu": 90},
			expected:   []string{"CPU usage 92.3% exceeds threshold 90.0%"},
		},
		{
			name:       "memory above threshold",
			sample:     &models.MetricsSample{CPUPercent: 10, MemoryPercent: 88.8},
			thresholds: map[string]any{"memory": 80.0},
			expected:   []string{"Memory usage 88.8% exceeds threshold 80.0%"},
		},
		{
			name:       "both above",
			sample:     &models.MetricsSample{CPUPercent: 95, MemoryPercent: 95},
			thresholds: map[string]any{"cpu": 90, "memory": 90},
			expected: []string{
				"CPU usage 95.0% exceeds threshold 90.0%",
				"Memory usage 95.0% exceeds threshold 90.0%",
			},
		},
		{
			name:       "below thresholds",
			sample:     &models.MetricsSample{CPUPercent: 10, MemoryPercent: 10},
			thresholds: map[string]any{"cpu": 90, "memory": 90},
			expected:   []string{},
		},
		{
			name:     "no thresholds configured",
			sample:   &models.MetricsSample{CPUPercent: 99, MemoryPercent: 99},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params := map[string]any{}
			if tt.thresholds != nil {
				params["thresholds"] = tt.thresholds
			}

			action, err := NewAction(params, &fixedSampler{sample: tt.sample}, nil)
			require.NoError(t, err)

			execCtx := models.NewExecutionContext("wf-1", nil)

			data, err := action.Execute(context.Background(), execCtx, testLogger())
			require.NoError(t, err)

			assert.Equal(t, tt.expected, data.(map[string]any)["alerts"])
		})
	}
}

func TestAction_Execute_SamplerFailure(t *testing.T) {
	t.Parallel()

	action, err := NewAction(nil, &fixedSampler{err: errors.New("proc unavailable")}, nil)
	require.NoError(t, err)

	execCtx := models.NewExecutionContext("wf-1", nil)

	_, err = action.Execute(context.Background(), execCtx, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to sample system metrics")
}

func TestAction_Execute_StoreFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	store := &captureStore{err: errors.New("db down")}
	sampler := &fixedSampler{sample: &models.MetricsSample{CPUPercent: 5}}

	action, err := NewAction(nil, sampler, store)
	require.NoError(t, err)

	execCtx := models.NewExecutionContext("wf-1", nil)

	_, err = action.Execute(context.Background(), execCtx, testLogger())
	require.NoError(t, err)
}

func TestFactory(t *testing.T) {
	t.Parallel()

	factory := NewFactory(&fixedSampler{sample: &models.MetricsSample{}}, nil)
	assert.Equal(t, "check_system_metrics", factory.ID())
}
