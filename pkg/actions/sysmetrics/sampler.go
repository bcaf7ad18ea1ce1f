package sysmetrics

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/flowmill/flowmill/pkg/models"
)

// HostSampler reads CPU and memory from the local host via gopsutil.
type HostSampler struct{}

func NewHostSampler() *HostSampler {
	return &HostSampler{}
}

// Sample returns one observation. CPU percent is read since the last call
// (interval 0), which gopsutil reports process-wide without blocking.
func (s *HostSampler) Sample(ctx context.Context) (*models.MetricsSample, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu usage: %w", err)
	}

	var cpuPercent float64
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory usage: %w", err)
	}

	return &models.MetricsSample{
		CPUPercent:    cpuPercent,
		MemoryPercent: vm.UsedPercent,
		MemoryUsed:    vm.Used,
		MemoryTotal:   vm.Total,
		SampledAt:     time.Now().UTC(),
	}, nil
}
