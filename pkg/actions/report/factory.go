package report

import (
	"github.com/flowmill/flowmill/pkg/protocol"
)

func NewFactory() *Factory {
	return &Factory{}
}

type Factory struct{}

func (f *Factory) ID() string {
	return "generate_report"
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(params)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Generate Report Action",
		"description": "Serializes run data as json, csv, or a rendered text template",
		"properties": map[string]any{
			"data": map[string]any{
				"description": "Data to serialize; defaults to the run's variables map",
			},
			"format": map[string]any{
				"type":    "string",
				"enum":    []string{FormatJSON, FormatCSV, FormatText},
				"default": FormatJSON,
			},
			"template": map[string]any{
				"type":        "string",
				"description": "Text template with {{key}} placeholders (text format only)",
			},
			"outputPath": map[string]any{
				"type":        "string",
				"description": "File path to write the report to; directories are created",
			},
			"storeAs": map[string]any{
				"type":        "string",
				"description": "Variable name to store the rendered report under",
			},
		},
	}
}
