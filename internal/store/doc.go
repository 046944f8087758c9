// Package store is the record store connector for expert_log and
// expert_camp.
//
// A Store wraps one relational backend. Two dialects are supported and chosen
// from the DSN:
//   - postgres:// or postgresql:// opens PostgreSQL through the pgx stdlib driver
//   - anything else (a path, file:..., sqlite://..., :memory:) opens SQLite
//
// All SQL text is fixed per dialect and StatementKind when the store is
// opened. Request values only ever travel as bind parameters.
//
// # SQLite configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce the camp → log reference and its cascade
//
// # Errors
//
// Every failure is returned as *Error, tagged with the store name, the
// statement kind and a classified ErrorKind (unique, foreign_key, ...).
package store
