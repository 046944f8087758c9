package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/expertlog/internal/record"
	"github.com/roach88/expertlog/internal/store"
)

const teamA = `{"name":"Team A","date":"2024-01-01","totalMen":3,"totalWomen":2,"totalSyringe":10,"totalPipe":0,"totalSandwich":5,"notes":"ok","totalSoup":4}`

// unreachablePostgres refuses connections immediately.
const unreachablePostgres = "postgres://expertlog@127.0.0.1:1/expertlog?connect_timeout=1"

// clearEnv unsets every variable the configuration reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DATABASE_URL", "SECONDARY_DATABASE_URL", "LOG_ID_MODE", "CAMP_ID_MODE",
		"LOG_ORDER", "REPLICATION_JOURNAL_URI", "REPLICATION_OUTBOX", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func dbPath(t *testing.T, name string) string {
	return filepath.Join(t.TempDir(), name+".db")
}

// openExisting opens a SQLite store created by a command under test.
func openExisting(t *testing.T, name, path string) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Config{Name: name, DSN: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func readLogs(t *testing.T, s *store.Store) []record.ExpertLog {
	t.Helper()
	logs, err := s.ReadLogs(context.Background())
	require.NoError(t, err)
	return logs
}
