// Package protocol defines the collaborator interfaces between the engine and
// the outside world: executable actions and the side-effect sinks they use.
package protocol

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ninjagenz/automata/pkg/models"
)

// ErrChainDeferred is returned by an action that handed the remainder of its
// chain to the delayed-execution queue. The executor stops the synchronous run
// at that point; it is a control signal, not a failure.
var ErrChainDeferred = errors.New("action chain deferred")

// Action executes one step of a rule's chain.
type Action interface {
	Execute(ctx context.Context, run models.RuleRun, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory builds actions of one type from step configuration. Schema
// returns the JSON schema the configuration is validated against at rule
// authoring time, so the executor never needs to shape-guess at run time.
type ActionFactory interface {
	ID() string
	Create(config map[string]any) (Action, error)
	Schema() map[string]any
}
