package replica

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/expertlog/internal/record"
	"github.com/roach88/expertlog/internal/store"
	"github.com/roach88/expertlog/internal/testutil"
)

func TestChangeEncoding(t *testing.T) {
	l := testutil.SampleLog("Team A")
	l.LogID = record.SerialID(12)
	cp := testutil.SampleCamp(record.TokenID("log-x"), "North")
	cp.CampID = record.TokenID("camp-y")

	tests := []struct {
		name string
		in   Change
	}{
		{"log insert", Change{Op: OpInsert, Entity: record.EntityLog, ID: l.LogID, Log: &l}},
		{"camp insert", Change{Op: OpInsert, Entity: record.EntityCamp, ID: cp.CampID, Camp: &cp}},
		{"log delete", Change{Op: OpDelete, Entity: record.EntityLog, ID: record.SerialID(3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := encodeChange(tt.in)
			require.NoError(t, err)
			got, err := decodeChange(b)
			require.NoError(t, err)
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestDecodeChange_Garbage(t *testing.T) {
	_, err := decodeChange([]byte{0xc1})
	assert.Error(t, err)
}

func TestChangeApply_Unsupported(t *testing.T) {
	err := Change{Op: OpDelete, Entity: record.EntityCamp}.Apply(context.Background(), testutil.Unreachable("x"))
	assert.ErrorContains(t, err, "unsupported change")
}

func TestOutbox_RecordsFailure(t *testing.T) {
	primary := testutil.OpenStore(t, "primary", store.Config{})
	clock := testutil.NewDeterministicClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), time.Second)
	outbox := NewOutbox(primary, WithClock(clock.Now))
	c := New(primary, WithSecondary(testutil.Unreachable("secondary")), WithSink(outbox))
	ctx := context.Background()

	res, err := c.SaveLog(ctx, testutil.SampleLog("Team A"))
	require.NoError(t, err)

	entries, err := primary.ReadOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "expert_log", e.Entity)
	assert.Equal(t, "insert", e.Op)
	assert.Equal(t, res.ID.String(), e.RecordID)
	assert.Equal(t, "2024-01-01T12:00:00Z", e.CreatedAt)
	assert.Contains(t, e.Reason, "connection refused")

	ch, err := decodeChange(e.Payload)
	require.NoError(t, err)
	require.NotNil(t, ch.Log)
	assert.Equal(t, "Team A", ch.Log.Name)
	assert.Equal(t, res.ID, ch.Log.LogID)
}

func TestOutbox_DrainAfterRecovery(t *testing.T) {
	primary := testutil.OpenStore(t, "primary", store.Config{})
	replica := testutil.OpenStore(t, "secondary", store.Config{})
	secondary := testutil.NewFlakyBackend(replica)
	outbox := NewOutbox(primary)
	c := New(primary, WithSecondary(secondary), WithSink(outbox))
	ctx := context.Background()

	secondary.SetDown(true)
	logRes, err := c.SaveLog(ctx, testutil.SampleLog("parent"))
	require.NoError(t, err)
	campRes, err := c.SaveCamp(ctx, testutil.SampleCamp(logRes.ID, "camp"))
	require.NoError(t, err)
	assert.Equal(t, StateSecondaryFailed, campRes.State)

	// Still down: nothing is removed.
	report, err := outbox.Drain(ctx, secondary)
	require.Error(t, err)
	assert.True(t, store.IsConnectivity(err))
	assert.Zero(t, report.Applied)
	entries, err := primary.ReadOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	secondary.SetDown(false)
	report, err = outbox.Drain(ctx, secondary)
	require.NoError(t, err)
	assert.Equal(t, DrainReport{Applied: 2}, report)

	entries, err = primary.ReadOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	camps, err := replica.ReadCampsForLog(ctx, logRes.ID)
	require.NoError(t, err)
	require.Len(t, camps, 1)
	assert.Equal(t, campRes.ID, camps[0].CampID)
}

func TestOutbox_DrainSkipsAlreadyReplicated(t *testing.T) {
	primary := testutil.OpenStore(t, "primary", store.Config{})
	secondary := testutil.OpenStore(t, "secondary", store.Config{})
	outbox := NewOutbox(primary)
	ctx := context.Background()

	l := testutil.SampleLog("dup")
	l.LogID = record.SerialID(1)
	_, err := secondary.InsertLog(ctx, l)
	require.NoError(t, err)

	perr := &PartialReplicationError{
		Change:    Change{Op: OpInsert, Entity: record.EntityLog, ID: l.LogID, Log: &l},
		Secondary: "secondary",
		Err:       testutil.ErrUnreachable,
	}
	require.NoError(t, outbox.ReplicationFailed(ctx, perr))

	report, err := outbox.Drain(ctx, secondary)
	require.NoError(t, err)
	assert.Equal(t, DrainReport{Skipped: 1}, report)

	entries, err := primary.ReadOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOutbox_DrainEmpty(t *testing.T) {
	primary := testutil.OpenStore(t, "primary", store.Config{})
	report, err := NewOutbox(primary).Drain(context.Background(), testutil.Unreachable("secondary"))
	require.NoError(t, err)
	assert.Equal(t, DrainReport{}, report)
}

func TestOutbox_ChangesQueueBehindPendingLog(t *testing.T) {
	primary := testutil.OpenStore(t, "primary", store.Config{})
	replica := testutil.OpenStore(t, "secondary", store.Config{})
	secondary := testutil.NewFlakyBackend(replica)
	outbox := NewOutbox(primary)
	c := New(primary, WithSecondary(secondary), WithSink(outbox), WithBacklog(outbox))
	ctx := context.Background()

	secondary.SetDown(true)
	logRes, err := c.SaveLog(ctx, testutil.SampleLog("short lived"))
	require.NoError(t, err)
	secondary.SetDown(false)

	// The secondary is back, but the log's insert is still queued.
	campRes, err := c.SaveCamp(ctx, testutil.SampleCamp(logRes.ID, "camp"))
	require.NoError(t, err)
	assert.False(t, campRes.Replicated)
	assert.ErrorIs(t, campRes.Replication, ErrBacklog)

	delRes, err := c.DeleteLog(ctx, logRes.ID)
	require.NoError(t, err)
	assert.False(t, delRes.Replicated)
	assert.Equal(t, StateSecondaryFailed, delRes.State)
	assert.ErrorIs(t, delRes.Replication, ErrBacklog)

	// Other logs are unaffected.
	otherRes, err := c.SaveLog(ctx, testutil.SampleLog("other"))
	require.NoError(t, err)
	assert.True(t, otherRes.Replicated)

	entries, err := primary.ReadOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, logRes.ID.String(), e.LogRef)
	}

	report, err := outbox.Drain(ctx, secondary)
	require.NoError(t, err)
	assert.Equal(t, DrainReport{Applied: 3}, report)

	primaryLogs, err := primary.ReadLogs(ctx)
	require.NoError(t, err)
	secondaryLogs, err := replica.ReadLogs(ctx)
	require.NoError(t, err)
	require.Len(t, secondaryLogs, 1, "the deleted log is not brought back")
	assert.Equal(t, primaryLogs, secondaryLogs)
	camps, err := replica.ReadCamps(ctx)
	require.NoError(t, err)
	assert.Empty(t, camps)

	pending, err := outbox.Pending(ctx, logRes.ID)
	require.NoError(t, err)
	assert.False(t, pending)
}
