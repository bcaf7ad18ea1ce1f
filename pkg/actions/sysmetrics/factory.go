package sysmetrics

import (
	"github.com/flowmill/flowmill/pkg/protocol"
)

// NewFactory creates the check_system_metrics factory. A nil sampler selects
// the gopsutil host sampler; the store may be nil when samples should not be
// persisted.
func NewFactory(sampler Sampler, store protocol.MetricsStore) *Factory {
	return &Factory{sampler: sampler, store: store}
}

type Factory struct {
	sampler Sampler
	store   protocol.MetricsStore
}

func (f *Factory) ID() string {
	return "check_system_metrics"
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(params, f.sampler, f.store)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Check System Metrics Action",
		"description": "Samples host CPU and memory and raises threshold alerts",
		"properties": map[string]any{
			"thresholds": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cpu":    map[string]any{"type": "number", "description": "CPU alert threshold in percent"},
					"memory": map[string]any{"type": "number", "description": "Memory alert threshold in percent"},
				},
			},
			"storeAs": map[string]any{
				"type":        "string",
				"description": "Variable name to store the sample and alerts under",
			},
		},
	}
}
