package registry

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/flowmill/flowmill/pkg/models"
)

// ValidateParameters checks an action's parameter map against the JSON
// schema published by its factory.
func (r *Registry) ValidateParameters(actionType models.ActionType, params map[string]any) error {
	factory, ok := r.actionFactories[string(actionType)]
	if !ok {
		return fmt.Errorf("action type %q not registered: %w", actionType, ErrUnknownActionType)
	}

	if params == nil {
		params = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(factory.Schema())
	dataLoader := gojsonschema.NewGoLoader(params)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("schema validation for action %q errored: %w", actionType, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			details = append(details, resultError.String())
		}

		return fmt.Errorf("parameters for action %q failed schema validation: %s",
			actionType, strings.Join(details, "; "))
	}

	return nil
}

// ValidateWorkflowActions validates every action of a workflow definition.
func (r *Registry) ValidateWorkflowActions(workflow *models.Workflow) error {
	for i, action := range workflow.Actions {
		if err := r.ValidateParameters(action.Type, action.Parameters); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}

	return nil
}
