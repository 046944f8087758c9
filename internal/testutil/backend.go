package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/expertlog/internal/record"
	"github.com/roach88/expertlog/internal/store"
)

// Backend mirrors the coordinator's store interface.
type Backend interface {
	Name() string
	InsertLog(ctx context.Context, l record.ExpertLog) (record.ID, error)
	InsertCamp(ctx context.Context, c record.ExpertCamp) (record.ID, error)
	DeleteLog(ctx context.Context, id record.ID) (int64, error)
}

// ErrUnreachable is the cause reported by a down FlakyBackend.
var ErrUnreachable = errors.New("connection refused")

// FlakyBackend wraps a real backend and fails every call while down, the
// way an unreachable store would.
type FlakyBackend struct {
	inner Backend

	mu    sync.Mutex
	down  bool
	calls int
}

// NewFlakyBackend wraps inner; it starts up.
func NewFlakyBackend(inner Backend) *FlakyBackend {
	return &FlakyBackend{inner: inner}
}

// Unreachable returns a backend named name that is permanently down.
func Unreachable(name string) *FlakyBackend {
	return &FlakyBackend{inner: nameOnly(name), down: true}
}

// SetDown toggles the failure mode.
func (f *FlakyBackend) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

// Calls returns how many writes were attempted.
func (f *FlakyBackend) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FlakyBackend) Name() string { return f.inner.Name() }

func (f *FlakyBackend) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.down {
		return &store.Error{Backend: f.inner.Name(), Op: op, Kind: store.KindConnectivity, Err: ErrUnreachable}
	}
	return nil
}

func (f *FlakyBackend) InsertLog(ctx context.Context, l record.ExpertLog) (record.ID, error) {
	if err := f.check("insert log"); err != nil {
		return record.ID{}, err
	}
	return f.inner.InsertLog(ctx, l)
}

func (f *FlakyBackend) InsertCamp(ctx context.Context, c record.ExpertCamp) (record.ID, error) {
	if err := f.check("insert camp"); err != nil {
		return record.ID{}, err
	}
	return f.inner.InsertCamp(ctx, c)
}

func (f *FlakyBackend) DeleteLog(ctx context.Context, id record.ID) (int64, error) {
	if err := f.check("delete log"); err != nil {
		return 0, err
	}
	return f.inner.DeleteLog(ctx, id)
}

// nameOnly is a Backend that is never reached because its wrapper is down.
type nameOnly string

func (n nameOnly) Name() string { return string(n) }

func (n nameOnly) InsertLog(context.Context, record.ExpertLog) (record.ID, error) {
	return record.ID{}, ErrUnreachable
}

func (n nameOnly) InsertCamp(context.Context, record.ExpertCamp) (record.ID, error) {
	return record.ID{}, ErrUnreachable
}

func (n nameOnly) DeleteLog(context.Context, record.ID) (int64, error) {
	return 0, ErrUnreachable
}
