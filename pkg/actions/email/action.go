// Package email provides the send_email action. Delivery goes through a
// pluggable notification sink; sink failure is logged, not fatal.
package email

import (
	"context"
	"errors"
	"log/slog"

	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/protocol"
)

// ErrMissingFields is returned unless to, subject and body are all present.
var ErrMissingFields = errors.New("to, subject and body parameters are required")

// Action sends one email through the configured notification sink.
type Action struct {
	To          []string
	Subject     string
	Body        string
	Attachments []string
	StoreAs     string

	sink protocol.NotificationSink
}

// NewAction creates a send_email action. The recipient parameter is
// normalized to a list: a single string becomes a one-element list.
func NewAction(params map[string]any, sink protocol.NotificationSink) (*Action, error) {
	subject, _ := params["subject"].(string)
	body, _ := params["body"].(string)
	to := normalizeRecipients(params["to"])
	storeAs, _ := params["storeAs"].(string)

	if len(to) == 0 || subject == "" || body == "" {
		return nil, ErrMissingFields
	}

	return &Action{
		To:          to,
		Subject:     subject,
		Body:        body,
		Attachments: normalizeRecipients(params["attachments"]),
		StoreAs:     storeAs,
		sink:        sink,
	}, nil
}

// Execute hands the message to the notification sink. The sent payload is
// the action's result and is stored under storeAs when given.
func (a *Action) Execute(ctx context.Context, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", "send_email", "recipients", len(a.To))
	logger.InfoContext(ctx, "Executing send_email action")

	message := protocol.EmailMessage{
		To:          a.To,
		Subject:     a.Subject,
		Body:        a.Body,
		Attachments: a.Attachments,
		WorkflowID:  executionCtx.WorkflowID,
		ExecutionID: executionCtx.ID,
	}

	if a.sink != nil {
		if err := a.sink.SendEmail(ctx, message); err != nil {
			// Best-effort delivery: the sink failing does not fail the action.
			logger.WarnContext(ctx, "Notification sink rejected email", "error", err)
		}
	}

	result := map[string]any{
		"to":      a.To,
		"subject": a.Subject,
		"body":    a.Body,
		"sent":    true,
	}

	if a.StoreAs != "" {
		executionCtx.SetVariable(a.StoreAs, result)
	}

	logger.InfoContext(ctx, "send_email completed", "subject", a.Subject)

	return result, nil
}

func normalizeRecipients(value any) []string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil
		}

		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))

		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}
