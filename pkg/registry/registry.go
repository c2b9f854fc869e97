// Package registry holds the action factories known to the engine and
// validates step configuration against each factory's schema.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

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

func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	r.actionFactories[factory.ID()] = factory
}

// IsActionRegistered reports whether an action type is known.
func (r *Registry) IsActionRegistered(actionType models.ActionType) bool {
	_, ok := r.actionFactories[string(actionType)]

	return ok
}

// CreateAction builds an executable action for one step.
func (r *Registry) CreateAction(actionType models.ActionType, config map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[string(actionType)]
	if !ok {
		return nil, fmt.Errorf("action type %q not registered", actionType)
	}

	return factory.Create(config)
}

// ValidateStep checks a step's configuration against the schema published by
// its action factory. This runs at rule-authoring time so execution can
// pattern-match on typed configuration without runtime shape-guessing.
func (r *Registry) ValidateStep(step models.ActionStep) error {
	factory, ok := r.actionFactories[string(step.Type)]
	if !ok {
		return fmt.Errorf("action type %q not registered", step.Type)
	}

	schemaLoader := gojsonschema.NewGoLoader(factory.Schema())

	config := step.Config
	if config == nil {
		config = map[string]any{}
	}

	configLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, configLoader)
	if err != nil {
		return fmt.Errorf("schema validation for action %q: %w", step.Type, err)
	}

	if !result.Valid() {
		detail := ""
		for _, desc := range result.Errors() {
			if detail != "" {
				detail += "; "
			}

			detail += desc.String()
		}

		return fmt.Errorf("invalid %q config at step %d: %s", step.Type, step.Step, detail)
	}

	return nil
}

// ValidateChain validates every step of a rule's action chain.
func (r *Registry) ValidateChain(chain []models.ActionStep) error {
	for _, step := range chain {
		if err := r.ValidateStep(step); err != nil {
			return err
		}
	}

	return nil
}
