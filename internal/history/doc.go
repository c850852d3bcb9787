// Package history journals applied state mutations to SQLite. Each row
// stores the full post-mutation tree as JSON, letting operators inspect
// what the device reported and when, across client restarts.
package history
