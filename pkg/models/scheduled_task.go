package models

import "time"

// ScheduledTaskView is the introspection view of a scheduler registration:
// one exists per active cron workflow while its timer is registered.
type ScheduledTaskView struct {
	WorkflowID     string     `json:"workflow_id"`
	CronExpression string     `json:"cron_expression"`
	IsRunning      bool       `json:"is_running"`
	LastRun        *time.Time `json:"last_run,omitempty"`
	NextRun        *time.Time `json:"next_run,omitempty"`
}

// MetricsSample is one host CPU/memory observation taken by the
// check_system_metrics action and persisted through the metrics store.
type MetricsSample struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	MemoryUsed    uint64    `json:"memory_used"`
	MemoryTotal   uint64    `json:"memory_total"`
	SampledAt     time.Time `json:"sampled_at"`
}
