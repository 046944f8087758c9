package replica

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/expertlog/internal/record"
)

// Backend is one store the coordinator writes to. *store.Store implements it.
type Backend interface {
	Name() string
	InsertLog(ctx context.Context, l record.ExpertLog) (record.ID, error)
	InsertCamp(ctx context.Context, c record.ExpertCamp) (record.ID, error)
	DeleteLog(ctx context.Context, id record.ID) (int64, error)
}

// schemaEnsurer is implemented by backends that can create their own
// tables. *store.Store implements it.
type schemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// Op is the kind of change replicated to the secondary.
type Op string

const (
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Change is one logical write with its final identifier, as applied to the
// secondary and as kept in the outbox.
type Change struct {
	Op     Op                 `msgpack:"op"`
	Entity record.Entity      `msgpack:"entity"`
	ID     record.ID          `msgpack:"id"`
	Log    *record.ExpertLog  `msgpack:"log,omitempty"`
	Camp   *record.ExpertCamp `msgpack:"camp,omitempty"`
}

// Apply writes the change to b.
func (c Change) Apply(ctx context.Context, b Backend) error {
	switch {
	case c.Op == OpInsert && c.Log != nil:
		_, err := b.InsertLog(ctx, *c.Log)
		return err
	case c.Op == OpInsert && c.Camp != nil:
		_, err := b.InsertCamp(ctx, *c.Camp)
		return err
	case c.Op == OpDelete && c.Entity == record.EntityLog:
		_, err := b.DeleteLog(ctx, c.ID)
		return err
	}
	return fmt.Errorf("unsupported change %s %s", c.Op, c.Entity)
}

// LogRef returns the log the change belongs to: the log itself, or the
// parent of a camp.
func (c Change) LogRef() record.ID {
	if c.Camp != nil {
		return c.Camp.LogID
	}
	return c.ID
}

func encodeChange(c Change) ([]byte, error) {
	b, err := msgpack.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode change: %w", err)
	}
	return b, nil
}

func decodeChange(b []byte) (Change, error) {
	var c Change
	if err := msgpack.Unmarshal(b, &c); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	return c, nil
}
