// Package logging provides structured logging for botlink.
//
// It wraps log/slog with config-driven level, format, and output
// selection, and stamps every record with the service name and version.
// Components receive a *Logger (or a narrow local logging interface)
// rather than using a package-level default.
package logging
