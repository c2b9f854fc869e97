package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ninjagenz/automata/pkg/models"
)

// ErrTriggerTimeout indicates the per-trigger execution ceiling was hit.
// Rules already executed before the deadline stay in the result.
var ErrTriggerTimeout = errors.New("trigger execution timed out")

// UnknownActionTypeError marks a step whose type no registered factory
// handles. The step is skipped and the chain continues, keeping older engines
// forward-compatible with newly introduced action types.
type UnknownActionTypeError struct {
	Step int
	Type models.ActionType
}

func (e *UnknownActionTypeError) Error() string {
	return fmt.Sprintf("unknown action type %q at step %d", e.Type, e.Step)
}

// ActionExecutionError wraps the failure of a single action step.
type ActionExecutionError struct {
	Step int
	Type models.ActionType
	Err  error
}

func (e *ActionExecutionError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Step, e.Type, e.Err)
}

func (e *ActionExecutionError) Unwrap() error {
	return e.Err
}

// RuleExecutionError aggregates the step-level failures of one rule so the
// caller can see which steps of which rule failed without losing the fact
// that sibling rules ran independently.
type RuleExecutionError struct {
	RuleID   string
	RuleName string
	Errs     []error
}

func (e *RuleExecutionError) Error() string {
	messages := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("rule %q (%s): %s", e.RuleName, e.RuleID, strings.Join(messages, "; "))
}

func (e *RuleExecutionError) Unwrap() []error {
	return e.Errs
}
