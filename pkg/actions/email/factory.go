package email

import (
	"github.com/flowmill/flowmill/pkg/protocol"
)

// NewFactory creates the send_email factory bound to a notification sink.
func NewFactory(sink protocol.NotificationSink) *Factory {
	return &Factory{sink: sink}
}

type Factory struct {
	sink protocol.NotificationSink
}

func (f *Factory) ID() string {
	return "send_email"
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(params, f.sink)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Send Email Action",
		"description": "Sends an email through the configured notification sink",
		"properties": map[string]any{
			"to": map[string]any{
				"description": "Recipient address or list of addresses",
			},
			"subject": map[string]any{
				"type": "string",
			},
			"body": map[string]any{
				"type": "string",
			},
			"attachments": map[string]any{
				"type":        "array",
				"description": "Attachment paths",
				"items":       map[string]any{"type": "string"},
			},
			"storeAs": map[string]any{
				"type":        "string",
				"description": "Variable name to store the sent payload under",
			},
		},
		"required": []string{"to", "subject", "body"},
	}
}
