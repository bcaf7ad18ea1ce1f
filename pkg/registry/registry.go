// Package registry maps action types to their factories and validates
// action parameters against each factory's JSON schema.
package registry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowmill/flowmill/pkg/models"
	"github.com/flowmill/flowmill/pkg/protocol"
)

// ErrUnknownActionType is returned when no factory serves an action type.
var ErrUnknownActionType = errors.New("unknown action type")

type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:          logger,
		actionFactories: make(map[string]protocol.ActionFactory),
	}
}

// RegisterAction makes a factory available under its ID, replacing any
// previous registration for the same type.
func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	r.actionFactories[factory.ID()] = factory
}

// CreateAction builds an action of the given type from its parameters.
func (r *Registry) CreateAction(actionType models.ActionType, params map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[string(actionType)]
	if !ok {
		return nil, fmt.Errorf("action type %q not registered: %w", actionType, ErrUnknownActionType)
	}

	return factory.Create(params)
}

// ActionTypes returns the registered action type identifiers.
func (r *Registry) ActionTypes() []string {
	types := make([]string, 0, len(r.actionFactories))
	for actionType := range r.actionFactories {
		types = append(types, actionType)
	}

	return types
}
