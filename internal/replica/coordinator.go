package replica

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/expertlog/internal/idgen"
	"github.com/roach88/expertlog/internal/record"
	"github.com/roach88/expertlog/internal/store"
)

// State is the position of one write in the dual-write state machine:
//
//	Received → PrimaryWriting → PrimaryFailed
//	                          → PrimaryDone → SecondaryWriting → SecondaryFailed
//	                                                           → SecondaryDone
//
// PrimaryDone is terminal when no secondary is configured.
type State string

const (
	StateReceived         State = "received"
	StatePrimaryWriting   State = "primary_writing"
	StatePrimaryFailed    State = "primary_failed"
	StatePrimaryDone      State = "primary_done"
	StateSecondaryWriting State = "secondary_writing"
	StateSecondaryFailed  State = "secondary_failed"
	StateSecondaryDone    State = "secondary_done"
)

// Succeeded reports whether the caller sees the write as successful.
func (s State) Succeeded() bool {
	switch s {
	case StatePrimaryDone, StateSecondaryFailed, StateSecondaryDone:
		return true
	}
	return false
}

// Result describes a finished write.
type Result struct {
	// ID is the record's final identifier, whichever mode produced it.
	ID record.ID

	// State is the terminal state reached.
	State State

	// Replicated is true when the secondary applied the change.
	Replicated bool

	// Replication holds the secondary failure, if any. It has already been
	// delivered to the Sink.
	Replication *PartialReplicationError
}

// Backlog reports whether changes to a log, or to its camps, are still
// waiting to be replayed to the secondary. *Outbox implements it.
type Backlog interface {
	Pending(ctx context.Context, logID record.ID) (bool, error)
}

// Coordinator writes records to the primary and the optional secondary.
// It holds no per-request state and is safe for concurrent use.
type Coordinator struct {
	primary   Backend
	secondary Backend
	logIDs    idgen.Strategy
	campIDs   idgen.Strategy
	sink      Sink
	backlog   Backlog
	metrics   *Metrics
	logger    *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSecondary sets the replication target. A nil backend disables
// replication.
func WithSecondary(b Backend) Option {
	return func(c *Coordinator) { c.secondary = b }
}

// WithIDStrategies sets identifier sourcing for logs and camps.
func WithIDStrategies(logs, camps idgen.Strategy) Option {
	return func(c *Coordinator) {
		c.logIDs = logs
		c.campIDs = camps
	}
}

// WithSink sets the replication side channel. Defaults to a LogSink.
func WithSink(s Sink) Option {
	return func(c *Coordinator) { c.sink = s }
}

// WithBacklog keeps per-log ordering with the outbox: while a log has
// queued changes, later changes to it are queued too. The sink must then
// persist what it receives, normally by including the same Outbox.
func WithBacklog(b Backlog) Option {
	return func(c *Coordinator) { c.backlog = b }
}

// WithMetrics enables Prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// New creates a coordinator writing to primary.
func New(primary Backend, opts ...Option) *Coordinator {
	c := &Coordinator{
		primary: primary,
		logIDs:  idgen.NewStrategy(idgen.ModeSerial),
		campIDs: idgen.NewStrategy(idgen.ModeSerial),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.sink == nil {
		c.sink = NewLogSink(c.logger)
	}
	return c
}

// HasSecondary reports whether a replication target is configured.
func (c *Coordinator) HasSecondary() bool {
	return c.secondary != nil
}

// SaveLog persists l to every configured store.
//
// The returned error is a *record.ValidationError when the identifier
// strategy rejects the input, or the primary's *store.Error. A secondary
// failure never produces an error here.
func (c *Coordinator) SaveLog(ctx context.Context, l record.ExpertLog) (Result, error) {
	res := Result{State: StateReceived}

	id, err := c.logIDs.Assign(l.LogID, "logId")
	if err != nil {
		return res, err
	}
	l.LogID = id

	res.State = StatePrimaryWriting
	id, err = c.primary.InsertLog(ctx, l)
	c.metrics.write(record.EntityLog, c.primary.Name(), err)
	if err != nil {
		res.State = StatePrimaryFailed
		return res, err
	}
	l.LogID = id
	res.ID = id
	res.State = StatePrimaryDone

	c.replicate(ctx, &res, Change{Op: OpInsert, Entity: record.EntityLog, ID: id, Log: &l})
	return res, nil
}

// SaveCamp persists cp to every configured store. The camp's log reference
// is always taken as given; only the camp's own identifier is sourced by the
// camp strategy.
func (c *Coordinator) SaveCamp(ctx context.Context, cp record.ExpertCamp) (Result, error) {
	res := Result{State: StateReceived}

	if cp.LogID.IsZero() {
		return res, missingLogRef()
	}
	id, err := c.campIDs.Assign(cp.CampID, "campId")
	if err != nil {
		return res, err
	}
	cp.CampID = id

	res.State = StatePrimaryWriting
	id, err = c.primary.InsertCamp(ctx, cp)
	c.metrics.write(record.EntityCamp, c.primary.Name(), err)
	if err != nil {
		res.State = StatePrimaryFailed
		return res, err
	}
	cp.CampID = id
	res.ID = id
	res.State = StatePrimaryDone

	c.replicate(ctx, &res, Change{Op: OpInsert, Entity: record.EntityCamp, ID: id, Camp: &cp})
	return res, nil
}

// DeleteLog removes a log, and through the cascade its camps, from every
// configured store. Returns ErrNotFound when the primary has no such log; the
// secondary is not touched in that case.
func (c *Coordinator) DeleteLog(ctx context.Context, id record.ID) (Result, error) {
	res := Result{State: StatePrimaryWriting, ID: id}

	n, err := c.primary.DeleteLog(ctx, id)
	c.metrics.write(record.EntityLog, c.primary.Name(), err)
	if err != nil {
		res.State = StatePrimaryFailed
		return res, err
	}
	if n == 0 {
		res.State = StatePrimaryFailed
		return res, ErrNotFound
	}
	res.State = StatePrimaryDone

	c.replicate(ctx, &res, Change{Op: OpDelete, Entity: record.EntityLog, ID: id})
	return res, nil
}

// replicate applies ch to the secondary after the primary committed it.
//
// The primary write is already durable, so the secondary write and the side
// channel run detached from request cancellation.
func (c *Coordinator) replicate(ctx context.Context, res *Result, ch Change) {
	if c.secondary == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	res.State = StateSecondaryWriting
	err := c.applySecondary(ctx, ch)
	c.metrics.write(ch.Entity, c.secondary.Name(), err)
	if err == nil {
		res.State = StateSecondaryDone
		res.Replicated = true
		return
	}

	res.State = StateSecondaryFailed
	perr := &PartialReplicationError{Change: ch, Secondary: c.secondary.Name(), Err: err}
	res.Replication = perr
	c.metrics.partial(ch.Entity)

	if serr := c.sink.ReplicationFailed(ctx, perr); serr != nil {
		// Last resort so the signal is never silently lost.
		c.logger.Error("replication side channel failed",
			"entity", ch.Entity, "op", ch.Op, "id", ch.ID.String(),
			"replication_error", perr.Err, "error", serr)
	}
}

// applySecondary writes ch to the secondary unless it must queue behind a
// backlog. A secondary without tables gets its schema created and the write
// retried once.
func (c *Coordinator) applySecondary(ctx context.Context, ch Change) error {
	if c.backlog != nil {
		pending, err := c.backlog.Pending(ctx, ch.LogRef())
		if err != nil {
			return fmt.Errorf("check replication backlog: %w", err)
		}
		if pending {
			return ErrBacklog
		}
	}

	err := ch.Apply(ctx, c.secondary)
	if !store.IsMissingTable(err) {
		return err
	}
	se, ok := c.secondary.(schemaEnsurer)
	if !ok {
		return err
	}
	if serr := se.EnsureSchema(ctx); serr != nil {
		c.logger.WarnContext(ctx, "secondary schema still unavailable",
			"store", c.secondary.Name(), "error", serr)
		return err
	}
	c.logger.InfoContext(ctx, "secondary schema created", "store", c.secondary.Name())
	return ch.Apply(ctx, c.secondary)
}
