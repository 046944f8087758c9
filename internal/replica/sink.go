package replica

import (
	"context"
	"errors"
	"log/slog"
)

// Sink receives partial replication failures. Implementations must be safe
// for concurrent use.
type Sink interface {
	ReplicationFailed(ctx context.Context, perr *PartialReplicationError) error
}

// LogSink writes one structured error entry per failure.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a LogSink writing to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// ReplicationFailed implements Sink.
func (s *LogSink) ReplicationFailed(ctx context.Context, perr *PartialReplicationError) error {
	s.logger.ErrorContext(ctx, "partial replication",
		"entity", perr.Change.Entity,
		"op", perr.Change.Op,
		"id", perr.Change.ID.String(),
		"secondary", perr.Secondary,
		"error", perr.Err,
	)
	return nil
}

// MultiSink delivers each failure to every sink, even when some fail.
type MultiSink []Sink

// ReplicationFailed implements Sink. The returned error joins every sink
// error.
func (m MultiSink) ReplicationFailed(ctx context.Context, perr *PartialReplicationError) error {
	var errs []error
	for _, s := range m {
		if err := s.ReplicationFailed(ctx, perr); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
