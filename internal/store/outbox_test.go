package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutbox_AppendReadDelete(t *testing.T) {
	s := createTestStore(t, Config{})
	ctx := context.Background()

	first, err := s.AppendOutbox(ctx, OutboxEntry{
		Entity: "expert_log", Op: "insert", RecordID: "1", LogRef: "1",
		Payload: []byte{0x81, 0x01}, Reason: "secondary down", CreatedAt: "2024-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	second, err := s.AppendOutbox(ctx, OutboxEntry{
		Entity: "expert_camp", Op: "insert", RecordID: "2", LogRef: "1",
		Payload: []byte{0x02}, Reason: "timeout", CreatedAt: "2024-01-01T00:00:01Z",
	})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	entries, err := s.ReadOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, OutboxEntry{
		ID: first, Entity: "expert_log", Op: "insert", RecordID: "1", LogRef: "1",
		Payload: []byte{0x81, 0x01}, Reason: "secondary down", CreatedAt: "2024-01-01T00:00:00Z",
	}, entries[0])

	limited, err := s.ReadOutbox(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, s.DeleteOutbox(ctx, first))
	entries, err = s.ReadOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second, entries[0].ID)
}

func TestOutbox_PendingForLog(t *testing.T) {
	s := createTestStore(t, Config{})
	ctx := context.Background()

	n, err := s.PendingOutbox(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, e := range []OutboxEntry{
		{Entity: "expert_log", Op: "insert", RecordID: "1", LogRef: "1"},
		{Entity: "expert_camp", Op: "insert", RecordID: "7", LogRef: "1"},
		{Entity: "expert_log", Op: "insert", RecordID: "2", LogRef: "2"},
	} {
		e.Payload, e.Reason, e.CreatedAt = []byte{0x01}, "down", "2024-01-01T00:00:00Z"
		_, err := s.AppendOutbox(ctx, e)
		require.NoError(t, err)
	}

	n, err = s.PendingOutbox(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "the log and its camp")

	n, err = s.PendingOutbox(ctx, "3")
	require.NoError(t, err)
	assert.Zero(t, n)
}
