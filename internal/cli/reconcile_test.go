package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/expertlog/internal/replica"
	"github.com/roach88/expertlog/internal/store"
	"github.com/roach88/expertlog/internal/testutil"
)

func TestReconcile_RequiresSecondary(t *testing.T) {
	clearEnv(t)

	out, err := execute(t, "reconcile", "--db", dbPath(t, "primary"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no secondary store configured")
}

func TestReconcile_DrainsOutbox(t *testing.T) {
	clearEnv(t)
	ctx := context.Background()
	primaryPath, secondaryPath := dbPath(t, "primary"), dbPath(t, "secondary")

	primary := testutil.OpenStore(t, "primary", store.Config{DSN: primaryPath})
	coord := replica.New(primary,
		replica.WithSecondary(testutil.Unreachable("secondary")),
		replica.WithSink(replica.NewOutbox(primary)),
	)
	logRes, err := coord.SaveLog(ctx, testutil.SampleLog("Team A"))
	require.NoError(t, err)
	_, err = coord.SaveCamp(ctx, testutil.SampleCamp(logRes.ID, "North"))
	require.NoError(t, err)

	out, err := execute(t, "reconcile", "--db", primaryPath, "--secondary-db", secondaryPath, "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":{"applied":2,"skipped":0}}`, out)

	secondary := openExisting(t, "secondary", secondaryPath)
	logs := readLogs(t, secondary)
	require.Len(t, logs, 1)
	assert.Equal(t, logRes.ID, logs[0].LogID)
	camps, err := secondary.ReadCampsForLog(ctx, logRes.ID)
	require.NoError(t, err)
	assert.Len(t, camps, 1)

	entries, err := primary.ReadOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Nothing left to do.
	out, err = execute(t, "reconcile", "--db", primaryPath, "--secondary-db", secondaryPath)
	require.NoError(t, err)
	assert.Equal(t, "reconciled: 0 applied, 0 already present\n", out)
}

func TestReconcile_StopsAtFailure(t *testing.T) {
	clearEnv(t)
	ctx := context.Background()
	primaryPath, secondaryPath := dbPath(t, "primary"), dbPath(t, "secondary")

	// The log never enters the outbox, so its camp cannot be applied.
	primary := testutil.OpenStore(t, "primary", store.Config{DSN: primaryPath})
	logID, err := primary.InsertLog(ctx, testutil.SampleLog("primary only"))
	require.NoError(t, err)
	coord := replica.New(primary,
		replica.WithSecondary(testutil.Unreachable("secondary")),
		replica.WithSink(replica.NewOutbox(primary)),
	)
	_, err = coord.SaveCamp(ctx, testutil.SampleCamp(logID, "orphan"))
	require.NoError(t, err)

	out, err := execute(t, "reconcile", "--db", primaryPath, "--secondary-db", secondaryPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, store.IsForeignKey(err))
	assert.Contains(t, out, "Error [E003]")

	entries, err := primary.ReadOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "failed entry stays for the next run")
}
