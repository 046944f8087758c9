package replica

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
)

// recordingSink collects every failure it receives.
type recordingSink struct {
	mu       sync.Mutex
	failures []*PartialReplicationError
	err      error
}

func (s *recordingSink) ReplicationFailed(_ context.Context, perr *PartialReplicationError) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, perr)
	return s.err
}

func (s *recordingSink) all() []*PartialReplicationError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*PartialReplicationError(nil), s.failures...)
}

// bufferLogger returns a JSON logger writing into buf.
func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
