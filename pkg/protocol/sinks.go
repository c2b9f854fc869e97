package protocol

import (
	"context"

	"github.com/ninjagenz/automata/pkg/models"
)

// Notifier is the outbound notification sink. Delivery is best-effort: a
// failed Send is reported by the executor but never aborts the chain.
type Notifier interface {
	Send(ctx context.Context, recipient, message string) error
}

// RecordUpdater applies a partial update to a stored record. Failures are
// surfaced to the caller because they represent an intended side effect the
// rule author expects to have happened.
type RecordUpdater interface {
	Apply(ctx context.Context, recordKind, recordID string, patch map[string]any) error
}

// ContinuationScheduler accepts the serialized remainder of an action chain
// for execution after a visibility delay. Schedule returns once the
// continuation is enqueued, not once the delay elapses.
type ContinuationScheduler interface {
	Schedule(ctx context.Context, c *models.Continuation) error
}
