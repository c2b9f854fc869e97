// Package filter evaluates rule filter predicates against trigger payloads.
package filter

import (
	"fmt"
	"strings"

	"github.com/ninjagenz/automata/pkg/models"
)

// Evaluator decides whether a single filter predicate holds for a payload.
// The engine treats it as pluggable so richer operator sets can be introduced
// without touching the orchestrator.
type Evaluator interface {
	Evaluate(payload models.TriggerPayload, f models.Filter) (bool, error)
}

// SimpleEvaluator compares payload values by their string form, the same way
// loosely typed rule data is authored.
type SimpleEvaluator struct{}

func NewSimpleEvaluator() *SimpleEvaluator {
	return &SimpleEvaluator{}
}

func (e *SimpleEvaluator) Evaluate(payload models.TriggerPayload, f models.Filter) (bool, error) {
	actual, found := payload.Lookup(f.Field)

	switch f.Operator {
	case models.OperatorExists:
		return found, nil
	case models.OperatorEquals:
		return found && stringify(actual) == stringify(f.Value), nil
	case models.OperatorNotEquals:
		return !found || stringify(actual) != stringify(f.Value), nil
	case models.OperatorContains:
		return found && strings.Contains(stringify(actual), stringify(f.Value)), nil
	case models.OperatorNotContains:
		return !found || !strings.Contains(stringify(actual), stringify(f.Value)), nil
	default:
		return false, fmt.Errorf("unsupported filter operator %q", f.Operator)
	}
}

// Match evaluates all filters as a logical AND. An empty filter list passes.
func Match(evaluator Evaluator, payload models.TriggerPayload, filters []models.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := evaluator.Evaluate(payload, f)
		if err != nil {
			return false, fmt.Errorf("filter on field %q: %w", f.Field, err)
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func stringify(value any) string {
	if value == nil {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", value)
}
