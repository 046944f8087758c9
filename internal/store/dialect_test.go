package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/expertlog/internal/record"
)

const pragmaQuery = "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"

func TestResolveDSN(t *testing.T) {
	tests := []struct {
		dsn     string
		dialect string
		driver  string
	}{
		{"postgres://u:p@db:5432/expert", "postgres", "postgres://u:p@db:5432/expert"},
		{"postgresql://db/expert", "postgres", "postgresql://db/expert"},
		{"sqlite:///tmp/a.db", "sqlite", "/tmp/a.db?" + pragmaQuery},
		{"file:expertlog.db", "sqlite", "file:expertlog.db?" + pragmaQuery},
		{":memory:", "sqlite", ":memory:?" + pragmaQuery},
		{"file:a.db?mode=ro", "sqlite", "file:a.db?mode=ro&" + pragmaQuery},
		{"a.db?_fk=off&_busy_timeout=100", "sqlite", "a.db?_fk=off&_busy_timeout=100&_journal_mode=WAL&_synchronous=NORMAL"},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			d, dsn := resolveDSN(tt.dsn)
			assert.Equal(t, tt.dialect, d.name)
			assert.Equal(t, tt.driver, dsn)
		})
	}
}

func TestBuildStatements_Postgres(t *testing.T) {
	stmts := buildStatements(postgresDialect, Config{LogIDs: record.KindSerial, CampIDs: record.KindToken})

	assert.Contains(t, stmts[CreateLogTable], `"logid" BIGSERIAL PRIMARY KEY`)
	assert.Contains(t, stmts[CreateCampTable], `"campid" TEXT PRIMARY KEY`)
	assert.Contains(t, stmts[CreateCampTable], `"logid" BIGINT NOT NULL REFERENCES expert_log("logid") ON DELETE CASCADE`)
	assert.Contains(t, stmts[InsertLogAuto], "VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING")
	assert.Contains(t, stmts[SelectCampsForLog], `WHERE "logid" = $1`)
	assert.NotContains(t, stmts[InsertLog], "?")
}

func TestBuildStatements_SQLite(t *testing.T) {
	stmts := buildStatements(sqliteDialect, Config{LogOrder: OrderByDate})

	assert.Contains(t, stmts[CreateLogTable], `"logid" INTEGER PRIMARY KEY AUTOINCREMENT`)
	assert.Contains(t, stmts[SelectLogs], `ORDER BY "date" DESC, "logid" DESC`)
	assert.Equal(t, len(record.CampColumns), strings.Count(stmts[InsertCamp], "?"))
	assert.NotContains(t, stmts[InsertCamp], "$")
}
