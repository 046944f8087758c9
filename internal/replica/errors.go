package replica

import (
	"errors"
	"fmt"

	"github.com/roach88/expertlog/internal/record"
)

// ErrNotFound is returned when a delete matches nothing in the primary.
var ErrNotFound = errors.New("record not found")

// ErrBacklog marks a change held back because earlier changes to the same
// log still wait in the outbox. It is queued behind them instead of applied.
var ErrBacklog = errors.New("earlier changes to this log await replay")

// PartialReplicationError reports a change that reached the primary but not
// the secondary. It is never returned to the caller of a write; it goes to
// the Sink for out-of-band reconciliation.
type PartialReplicationError struct {
	Change    Change
	Secondary string
	Err       error
}

func (e *PartialReplicationError) Error() string {
	return fmt.Sprintf("partial replication: %s %s %s: secondary %s: %v",
		e.Change.Op, e.Change.Entity, e.Change.ID, e.Secondary, e.Err)
}

func (e *PartialReplicationError) Unwrap() error {
	return e.Err
}

func missingLogRef() error {
	return &record.ValidationError{Field: "logId", Reason: "required"}
}
