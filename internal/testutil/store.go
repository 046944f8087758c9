package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/expertlog/internal/record"
	"github.com/roach88/expertlog/internal/store"
)

// OpenStore opens a SQLite store named name in a temp dir, applies the
// schema and closes it when the test ends. cfg.Name and cfg.DSN are filled
// in when empty.
func OpenStore(t testing.TB, name string, cfg store.Config) *store.Store {
	t.Helper()
	if cfg.Name == "" {
		cfg.Name = name
	}
	if cfg.DSN == "" {
		cfg.DSN = filepath.Join(t.TempDir(), name+".db")
	}
	s, err := store.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open %s store: %v", name, err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema for %s store: %v", name, err)
	}
	return s
}

// SampleLog returns the example log used throughout the tests.
func SampleLog(name string) record.ExpertLog {
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

// SampleCamp returns a camp referencing logID.
func SampleCamp(logID record.ID, name string) record.ExpertCamp {
	return record.ExpertCamp{
		LogID:     logID,
		Name:      name,
		Date:      "2024-01-02",
		Latitude:  -1.2921,
		Longitude: 36.8219,
		Men:       1,
		Women:     2,
		Syringe:   3,
		Pipe:      0,
		Sandwich:  4,
		Soup:      5,
		Type:      "mobile",
		CampNotes: "quiet",
		Timestamp: "2024-01-02T10:00:00Z",
	}
}
