// Package testutil holds fixtures shared by the replica, server and cli
// tests: temporary SQLite stores, sample records, fake clocks and backends
// that fail on demand.
package testutil
