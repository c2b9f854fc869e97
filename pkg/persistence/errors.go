// Package persistence provides standardized error types for rule storage.
package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingWorkspace indicates a rule lookup without a workspace id.
	// This is a precondition violation, not an empty result.
	ErrMissingWorkspace = errors.New("workspace id is required")

	// ErrRuleNotFound indicates a rule was not found by the given identifier.
	ErrRuleNotFound = errors.New("rule not found")
)

// LookupError wraps storage or transport failures during rule lookup with the
// operation context, so the engine can report "zero rules matched" with a
// cause instead of crashing the trigger pipeline.
type LookupError struct {
	Op          string
	WorkspaceID string
	EventName   string
	Err         error
}

func (e *LookupError) Error() string {
	if e.EventName != "" {
		return fmt.Sprintf("%s failed for workspace %s, event %s: %v", e.Op, e.WorkspaceID, e.EventName, e.Err)
	}

	return fmt.Sprintf("%s failed for workspace %s: %v", e.Op, e.WorkspaceID, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for lookup errors.
func (e *LookupError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewLookupError creates a lookup error with context.
func NewLookupError(op, workspaceID, eventName string, err error) *LookupError {
	return &LookupError{
		Op:          op,
		WorkspaceID: workspaceID,
		EventName:   eventName,
		Err:         err,
	}
}

// IsRuleNotFound checks if an error indicates a rule was not found.
func IsRuleNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound)
}

// IsMissingWorkspace checks if an error indicates a missing workspace id.
func IsMissingWorkspace(err error) bool {
	return errors.Is(err, ErrMissingWorkspace)
}
