package logresult

import (
	"github.com/flowmill/flowmill/pkg/protocol"
)

// NewFactory creates the log_result factory bound to a log sink; the sink
// may be nil, in which case records only reach the run logger.
func NewFactory(sink protocol.LogSink) *Factory {
	return &Factory{sink: sink}
}

type Factory struct {
	sink protocol.LogSink
}

func (f *Factory) ID() string {
	return "log_result"
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(params, f.sink)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Log Result Action",
		"description": "Emits a structured log record through the log sink",
		"properties": map[string]any{
			"message": map[string]any{"type": "string"},
			"level": map[string]any{
				"type":    "string",
				"enum":    []string{"debug", "info", "warn", "error"},
				"default": "info",
			},
			"data": map[string]any{"type": "object"},
		},
	}
}
