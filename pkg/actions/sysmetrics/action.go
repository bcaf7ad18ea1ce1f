// Package sysmetrics provides the check_system_metrics action: samples host
// CPU and memory, persists the sample, and raises alert strings when
// configured thresholds are exceeded.
package sysmetrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/protocol"
)

// Sampler observes host CPU and memory. The default implementation uses
// gopsutil; tests substitute a fixed sampler.
type Sampler interface {
	Sample(ctx context.Context) (*models.MetricsSample, error)
}

// Thresholds are optional alert limits in percent. Zero means unchecked.
type Thresholds struct {
	CPU    float64
	Memory float64
}

// Action samples host metrics once per execution.
type Action struct {
	Thresholds Thresholds
	StoreAs    string

	sampler Sampler
	store   protocol.MetricsStore
}

// NewAction creates a check_system_metrics action from its parameter map.
func NewAction(params map[string]any, sampler Sampler, store protocol.MetricsStore) (*Action, error) {
	var thresholds Thresholds

	if raw, ok := params["thresholds"].(map[string]any); ok {
		thresholds.CPU = asFloat(raw["cpu"])
		thresholds.Memory = asFloat(raw["memory"])
	}

	storeAs, _ := params["storeAs"].(string)

	if sampler == nil {
		sampler = NewHostSampler()
	}

	return &Action{
		Thresholds: thresholds,
		StoreAs:    storeAs,
		sampler:    sampler,
		store:      store,
	}, nil
}

// Execute takes one sample, persists it best-effort, and returns the sample
// alongside any threshold alerts.
func (a *Action) Execute(ctx context.Context, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", "check_system_metrics")
	logger.InfoContext(ctx, "Executing check_system_metrics action")

	sample, err := a.sampler.Sample(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sample system metrics: %w", err)
	}

	if sample.SampledAt.IsZero() {
		sample.SampledAt = time.Now().UTC()
	}

	if a.store != nil {
		if err := a.store.RecordSample(ctx, sample); err != nil {
			// Persisting the sample is best-effort; the observation itself
			// is still the action's result.
			logger.WarnContext(ctx, "Failed to persist metrics sample", "error", err)
		}
	}

	alerts := a.checkThresholds(sample)

	result := map[string]any{
		"metrics": sample,
		"alerts":  alerts,
	}

	if a.StoreAs != "" {
		executionCtx.SetVariable(a.StoreAs, result)
	}

	logger.InfoContext(ctx, "check_system_metrics completed",
		"cpu_percent", sample.CPUPercent,
		"memory_percent", sample.MemoryPercent,
		"alerts", len(alerts))

	return result, nil
}

func (a *Action) checkThresholds(sample *models.MetricsSample) []string {
	alerts := []string{}

	if a.Thresholds.CPU > 0 && sample.CPUPercent > a.Thresholds.CPU {
		alerts = append(alerts, fmt.Sprintf("CPU usage %.1f%% exceeds threshold %.1f%%",
			sample.CPUPercent, a.Thresholds.CPU))
	}

	if a.Thresholds.Memory > 0 && sample.MemoryPercent > a.Thresholds.Memory {
		alerts = append(alerts, fmt.Sprintf("Memory usage %.1f%% exceeds threshold %.1f%%",
			sample.MemoryPercent, a.Thresholds.Memory))
	}

	return alerts
}

func asFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
