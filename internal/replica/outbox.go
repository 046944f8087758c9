package replica

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/expertlog/internal/record"
	"github.com/roach88/expertlog/internal/store"
)

// OutboxStore persists outbox entries. *store.Store implements it.
type OutboxStore interface {
	AppendOutbox(ctx context.Context, e store.OutboxEntry) (int64, error)
	ReadOutbox(ctx context.Context, limit int) ([]store.OutboxEntry, error)
	DeleteOutbox(ctx context.Context, id int64) error
	PendingOutbox(ctx context.Context, logRef string) (int64, error)
}

const drainBatch = 100

// Outbox is a Sink that keeps failed changes, msgpack-encoded, in the
// primary's replication_outbox table.
type Outbox struct {
	st     OutboxStore
	now    func() time.Time
	logger *slog.Logger
}

// OutboxOption configures an Outbox.
type OutboxOption func(*Outbox)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) OutboxOption {
	return func(o *Outbox) { o.now = now }
}

// WithOutboxLogger sets the logger used while draining.
func WithOutboxLogger(l *slog.Logger) OutboxOption {
	return func(o *Outbox) { o.logger = l }
}

// NewOutbox returns an Outbox backed by st.
func NewOutbox(st OutboxStore, opts ...OutboxOption) *Outbox {
	o := &Outbox{st: st, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ReplicationFailed implements Sink.
func (o *Outbox) ReplicationFailed(ctx context.Context, perr *PartialReplicationError) error {
	payload, err := encodeChange(perr.Change)
	if err != nil {
		return err
	}
	_, err = o.st.AppendOutbox(ctx, store.OutboxEntry{
		Entity:    string(perr.Change.Entity),
		Op:        string(perr.Change.Op),
		RecordID:  perr.Change.ID.String(),
		LogRef:    perr.Change.LogRef().String(),
		Payload:   payload,
		Reason:    perr.Err.Error(),
		CreatedAt: o.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("outbox append: %w", err)
	}
	return nil
}

// Pending implements Backlog. A log has a backlog while the outbox holds a
// change to it or to one of its camps.
func (o *Outbox) Pending(ctx context.Context, logID record.ID) (bool, error) {
	n, err := o.st.PendingOutbox(ctx, logID.String())
	if err != nil {
		return false, fmt.Errorf("outbox pending: %w", err)
	}
	return n > 0, nil
}

// DrainReport summarizes one Drain call.
type DrainReport struct {
	// Applied entries were written to the target.
	Applied int `json:"applied"`

	// Skipped entries were already present in the target.
	Skipped int `json:"skipped"`
}

// Drain replays the outbox into target, oldest entry first, and removes each
// entry once the target holds it. An insert the target rejects as a
// uniqueness conflict is treated as already replicated.
//
// Draining stops at the first other failure, leaving that entry and every
// later one in place so ordering (a log before its camps) is preserved.
func (o *Outbox) Drain(ctx context.Context, target Backend) (DrainReport, error) {
	var report DrainReport
	for {
		entries, err := o.st.ReadOutbox(ctx, drainBatch)
		if err != nil {
			return report, fmt.Errorf("read outbox: %w", err)
		}
		if len(entries) == 0 {
			return report, nil
		}

		for _, e := range entries {
			ch, err := decodeChange(e.Payload)
			if err != nil {
				return report, fmt.Errorf("outbox entry %d: %w", e.ID, err)
			}

			err = ch.Apply(ctx, target)
			switch {
			case err == nil:
				report.Applied++
			case ch.Op == OpInsert && store.IsUnique(err):
				report.Skipped++
				o.logger.DebugContext(ctx, "outbox entry already replicated",
					"outbox_id", e.ID, "entity", e.Entity, "id", e.RecordID)
			default:
				return report, fmt.Errorf("outbox entry %d: %w", e.ID, err)
			}

			if err := o.st.DeleteOutbox(ctx, e.ID); err != nil {
				return report, fmt.Errorf("outbox entry %d: %w", e.ID, err)
			}
		}
	}
}
