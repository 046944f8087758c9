package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/expertlog/internal/record"
)

// createTestStore creates a new file-backed SQLite store with the schema
// applied.
func createTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	if cfg.DSN == "" {
		cfg.DSN = filepath.Join(t.TempDir(), "test.db")
	}
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

// createTestLog returns a log with every field populated.
func createTestLog(name string) record.ExpertLog {
	return record.ExpertLog{
		Name:          name,
		Date:          "2024-01-01",
		TotalMen:      3,
		TotalWomen:    2,
		TotalSyringe:  10,
		TotalPipe:     0,
		TotalSandwich: 5,
		TotalSoup:     4,
		Notes:         "ok",
	}
}

// createTestCamp returns a camp referencing logID.
func createTestCamp(logID record.ID, name string) record.ExpertCamp {
	return record.ExpertCamp{
		LogID:     logID,
		Name:      name,
		Date:      "2024-01-02",
		Latitude:  -1.2921,
		Longitude: 36.8219,
		Men:       1,
		Women:     1,
		Syringe:   2,
		Pipe:      0,
		Sandwich:  3,
		Soup:      1,
		Type:      "mobile",
		CampNotes: "quiet",
		Timestamp: "2024-01-02T10:00:00Z",
	}
}
