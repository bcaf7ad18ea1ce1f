// Package protocol defines the contracts between the engine and its
// pluggable collaborators: typed actions and fire-and-forget sinks.
package protocol

import (
	"context"
	"log/slog"

	"github.com/flowmill/flowmill/pkg/models"
)

// Action executes one typed workflow step against the run's execution
// context. Implementations return their result payload or an error; the
// engine converts either into a models.ActionResult and never lets an error
// propagate past its own boundary.
type Action interface {
	Execute(ctx context.Context, executionCtx *models.ExecutionContext, logger *slog.Logger) (any, error)
}

// ActionFactory builds actions of one type from an open parameter map.
type ActionFactory interface {
	// ID returns the action type this factory serves (e.g. "fetch_data").
	ID() string

	// Create validates the parameters far enough to construct the action.
	// Missing required parameters fail here.
	Create(params map[string]any) (Action, error)

	// Schema returns the JSON Schema for this action's parameters.
	Schema() map[string]any
}
