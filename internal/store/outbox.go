package store

import (
	"context"
	"fmt"
)

// OutboxEntry is one record whose secondary write failed, kept in the
// primary until it is reconciled. LogRef names the log the change belongs
// to: the log itself, or the parent of a camp.
type OutboxEntry struct {
	ID        int64
	Entity    string
	Op        string
	RecordID  string
	LogRef    string
	Payload   []byte
	Reason    string
	CreatedAt string
}

// AppendOutbox stores e and returns its outbox id. e.ID is ignored.
func (s *Store) AppendOutbox(ctx context.Context, e OutboxEntry) (int64, error) {
	rows, err := s.Execute(ctx, InsertOutbox,
		e.Entity, e.Op, e.RecordID, e.LogRef, e.Payload, e.Reason, e.CreatedAt)
	if err != nil {
		return 0, err
	}
	if len(rows) != 1 {
		return 0, newError(s.name, InsertOutbox.String(), fmt.Errorf("expected 1 returned row, got %d", len(rows)))
	}
	id, ok := rows[0]["id"].(int64)
	if !ok {
		return 0, newError(s.name, InsertOutbox.String(), fmt.Errorf("unexpected id type %T", rows[0]["id"]))
	}
	return id, nil
}

// ReadOutbox returns up to limit entries, oldest first.
func (s *Store) ReadOutbox(ctx context.Context, limit int) ([]OutboxEntry, error) {
	rows, err := s.Execute(ctx, SelectOutbox, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]OutboxEntry, 0, len(rows))
	for _, row := range rows {
		e := OutboxEntry{
			ID:        asInt64(row["id"]),
			Entity:    asString(row["entity"]),
			Op:        asString(row["op"]),
			RecordID:  asString(row["recordid"]),
			LogRef:    asString(row["logref"]),
			Payload:   asBytes(row["payload"]),
			Reason:    asString(row["reason"]),
			CreatedAt: asString(row["createdat"]),
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DeleteOutbox removes one entry after it has been reconciled.
func (s *Store) DeleteOutbox(ctx context.Context, id int64) error {
	_, err := s.execAffected(ctx, DeleteOutbox, id)
	return err
}

// PendingOutbox counts the entries whose LogRef is logRef.
func (s *Store) PendingOutbox(ctx context.Context, logRef string) (int64, error) {
	rows, err := s.Execute(ctx, CountOutboxForLog, logRef)
	if err != nil {
		return 0, err
	}
	if len(rows) != 1 {
		return 0, newError(s.name, CountOutboxForLog.String(), fmt.Errorf("expected 1 row, got %d", len(rows)))
	}
	return asInt64(rows[0]["pending"]), nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	}
	return 0
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}

func asBytes(v any) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	}
	return nil
}
