package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Error is the failure type of every store operation.
//
// Backend names the store that produced it ("primary", "secondary", ...), so
// the caller can tell which side of a dual write failed.
type Error struct {
	// Backend is the configured store name.
	Backend string

	// Op is the statement that failed.
	Op string

	// Kind classifies the underlying failure.
	Kind ErrorKind

	// Err is the driver error.
	Err error
}

// ErrorKind categorizes store errors.
type ErrorKind string

const (
	// KindConnectivity covers unreachable backends, broken connections and
	// timeouts.
	KindConnectivity ErrorKind = "CONNECTIVITY"

	// KindUnique is a primary key or unique constraint violation.
	KindUnique ErrorKind = "UNIQUE_VIOLATION"

	// KindForeignKey is a reference to a row that does not exist.
	KindForeignKey ErrorKind = "FOREIGN_KEY_VIOLATION"

	// KindNotNull is a missing required column value.
	KindNotNull ErrorKind = "NOT_NULL_VIOLATION"

	// KindMissingTable means the schema has not been initialized yet. The
	// write may be retried once initialization completes.
	KindMissingTable ErrorKind = "MISSING_TABLE"

	// KindOther is anything else.
	KindOther ErrorKind = "STORE_ERROR"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: store %s: %s: %v", e.Kind, e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnique returns true if err is a uniqueness violation.
// Uses errors.As to handle wrapped errors.
func IsUnique(err error) bool {
	return hasKind(err, KindUnique)
}

// IsForeignKey returns true if err is a foreign key violation.
func IsForeignKey(err error) bool {
	return hasKind(err, KindForeignKey)
}

// IsMissingTable returns true if err reports an uninitialized schema.
func IsMissingTable(err error) bool {
	return hasKind(err, KindMissingTable)
}

// IsConnectivity returns true if err reports an unreachable backend.
func IsConnectivity(err error) bool {
	return hasKind(err, KindConnectivity)
}

func hasKind(err error, kind ErrorKind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

func newError(backend, op string, err error) *Error {
	return &Error{Backend: backend, Op: op, Kind: classify(err), Err: err}
}

// classify maps driver errors of both dialects onto ErrorKind.
func classify(err error) ErrorKind {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return KindUnique
		case sqlite3.ErrConstraintForeignKey:
			return KindForeignKey
		case sqlite3.ErrConstraintNotNull:
			return KindNotNull
		}
		switch liteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrNotADB, sqlite3.ErrIoErr:
			return KindConnectivity
		case sqlite3.ErrError:
			if strings.Contains(liteErr.Error(), "no such table") {
				return KindMissingTable
			}
		}
		return KindOther
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return KindUnique
		case "23503":
			return KindForeignKey
		case "23502":
			return KindNotNull
		case "42P01":
			return KindMissingTable
		}
		if strings.HasPrefix(pgErr.Code, "08") {
			return KindConnectivity
		}
		return KindOther
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connErr),
		errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded):
		return KindConnectivity
	}
	return KindOther
}
