package fetchdata

import (
	"github.com/flowmill/flowmill/pkg/protocol"
)

func NewFactory() *Factory {
	return &Factory{}
}

type Factory struct{}

func (f *Factory) ID() string {
	return "fetch_data"
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(params)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Fetch Data Action",
		"description": "Performs an HTTP request and optionally stores the parsed response",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Target URL for the HTTP request",
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method",
				"default":     "GET",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Request headers as a string map",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Raw request body",
			},
			"storeAs": map[string]any{
				"type":        "string",
				"description": "Variable name to store the parsed response under",
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds",
			},
		},
		"required": []string{"url"},
	}
}
