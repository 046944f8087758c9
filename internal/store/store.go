package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/expertlog/internal/record"
)

// Config describes one backend.
type Config struct {
	// Name tags every error from this store ("primary", "secondary").
	Name string

	// DSN selects the dialect and address. See the package documentation.
	DSN string

	// LogIDs and CampIDs select the identifier column types.
	LogIDs  record.IDKind
	CampIDs record.IDKind

	// LogOrder selects the ordering of ReadLogs. Defaults to OrderByID.
	LogOrder Order

	// Lazy skips the connectivity check in Open. Connections are then made
	// by the first statement, and an unreachable backend fails that
	// statement instead.
	Lazy bool
}

// Row is one result row keyed by lower-case column name.
type Row map[string]any

// Store is a connection pool to one relational backend plus the fixed
// statements used against it. It is safe for concurrent use.
type Store struct {
	name    string
	db      *sql.DB
	dialect dialect
	stmts   map[StatementKind]string
}

// Open connects to the backend described by cfg and verifies the
// connection unless cfg.Lazy is set. The schema is not touched; call
// EnsureSchema for that.
//
// SQLite pragmas travel in the driver DSN, so a lazily opened database file
// is not touched until the first statement.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Name == "" {
		cfg.Name = "primary"
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, newError(cfg.Name, "open", errors.New("empty DSN"))
	}
	if cfg.LogOrder == "" {
		cfg.LogOrder = OrderByID
	}

	d, dsn := resolveDSN(cfg.DSN)
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, newError(cfg.Name, "open", err)
	}

	if !cfg.Lazy {
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, &Error{Backend: cfg.Name, Op: "connect", Kind: KindConnectivity, Err: err}
		}
	}

	if d == sqliteDialect {
		// SQLite only supports one writer at a time, so limit connections.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	return &Store{
		name:    cfg.Name,
		db:      db,
		dialect: d,
		stmts:   buildStatements(d, cfg),
	}, nil
}

// Name returns the configured store name.
func (s *Store) Name() string {
	return s.name
}

// Dialect returns "sqlite" or "postgres".
func (s *Store) Dialect() string {
	return s.dialect.name
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &Error{Backend: s.name, Op: "ping", Kind: KindConnectivity, Err: err}
	}
	return nil
}

// EnsureSchema creates expert_log, expert_camp and replication_outbox if
// they do not exist. The camp table references the log table, so the order
// is fixed. This function is idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, kind := range []StatementKind{CreateLogTable, CreateCampTable, CreateOutboxTable} {
		if _, err := s.Execute(ctx, kind); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs one fixed statement with params bound positionally.
//
// Row-returning statements yield their rows in order. Other statements
// yield a single row holding "rowsaffected". All failures are *Error.
func (s *Store) Execute(ctx context.Context, kind StatementKind, params ...any) ([]Row, error) {
	query, ok := s.stmts[kind]
	if !ok {
		return nil, newError(s.name, kind.String(), fmt.Errorf("unknown statement kind %d", int(kind)))
	}

	if !kind.returnsRows() {
		res, err := s.db.ExecContext(ctx, query, params...)
		if err != nil {
			return nil, newError(s.name, kind.String(), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, newError(s.name, kind.String(), err)
		}
		return []Row{{"rowsaffected": n}}, nil
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, newError(s.name, kind.String(), err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, newError(s.name, kind.String(), err)
	}
	return out, nil
}

// scanRows reads every row into a Row keyed by lower-case column name.
// Returns an empty slice (not nil) when there are no rows.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	for i, c := range cols {
		cols[i] = strings.ToLower(c)
	}

	out := []Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
