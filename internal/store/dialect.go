package store

import (
	"net/url"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/expertlog/internal/record"
)

// dialect holds the per-engine pieces of SQL text.
type dialect struct {
	name      string
	driver    string
	serialKey string
	intType   string
	realType  string
	blobType  string
	dollar    bool
}

var (
	sqliteDialect = dialect{
		name:      "sqlite",
		driver:    "sqlite3",
		serialKey: "INTEGER PRIMARY KEY AUTOINCREMENT",
		intType:   "INTEGER",
		realType:  "REAL",
		blobType:  "BLOB",
	}

	postgresDialect = dialect{
		name:      "postgres",
		driver:    "pgx",
		serialKey: "BIGSERIAL PRIMARY KEY",
		intType:   "BIGINT",
		realType:  "DOUBLE PRECISION",
		blobType:  "BYTEA",
		dollar:    true,
	}
)

// resolveDSN picks the dialect for dsn and returns the DSN to hand to the
// driver.
func resolveDSN(dsn string) (dialect, string) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgresDialect, dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqliteDialect, withPragmas(strings.TrimPrefix(dsn, "sqlite://"))
	default:
		return sqliteDialect, withPragmas(dsn)
	}
}

// sqlitePragmas are applied by go-sqlite3 on every new connection:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
var sqlitePragmas = []struct{ key, alias, value string }{
	{"_journal_mode", "_journal", "WAL"},
	{"_synchronous", "_sync", "NORMAL"},
	{"_busy_timeout", "_timeout", "5000"},
	{"_foreign_keys", "_fk", "on"},
}

// withPragmas appends the connection pragmas the DSN does not already set.
func withPragmas(dsn string) string {
	base, query, _ := strings.Cut(dsn, "?")
	set, _ := url.ParseQuery(query)

	var extra []string
	for _, p := range sqlitePragmas {
		if set.Has(p.key) || set.Has(p.alias) {
			continue
		}
		extra = append(extra, p.key+"="+p.value)
	}
	if len(extra) == 0 {
		return dsn
	}
	if query != "" {
		query += "&"
	}
	return base + "?" + query + strings.Join(extra, "&")
}

// params returns n comma-separated bind placeholders starting at position 1.
func (d dialect) params(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.param(i + 1)
	}
	return strings.Join(ps, ", ")
}

func (d dialect) param(pos int) string {
	if d.dollar {
		return "$" + strconv.Itoa(pos)
	}
	return "?"
}

// idColumn returns the primary key definition for an identifier column.
func (d dialect) idColumn(kind record.IDKind) string {
	if kind == record.KindToken {
		return "TEXT PRIMARY KEY"
	}
	return d.serialKey
}

// refColumn returns the column type of a reference to an identifier.
func (d dialect) refColumn(kind record.IDKind) string {
	if kind == record.KindToken {
		return "TEXT"
	}
	return d.intType
}

// quote quotes a column name. date, type and timestamp collide with
// keywords in at least one engine.
func quote(name string) string {
	return `"` + name + `"`
}

func columnList(cols []record.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quote(c.Name)
	}
	return strings.Join(names, ", ")
}
