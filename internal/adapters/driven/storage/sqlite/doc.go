// Package sqlite provides a SQLite-backed implementation of driven.BlobStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Every cache entry is one row in the
// cache_entries table, keyed by the entry key, so entries can be read, replaced
// and removed independently.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.docqa/cache/cache.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. An upsert replaces an entry in a single statement, so a
// concurrent reader sees either the old or the new row.
package sqlite
