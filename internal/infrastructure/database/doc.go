// Package database manages the local SQLite database backing the
// state-change journal.
//
// It wraps database/sql with lifecycle management (directory creation,
// WAL pragmas, file permissions, health checks) and a small embedded
// migration runner: numbered .sql files compiled into the binary are
// applied in order, each in its own transaction, tracked in the
// schema_migrations table.
package database
