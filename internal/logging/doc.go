// Package logging provides structured logging built on zerolog.
//
// It covers logger construction from configuration (level, format, output),
// per-component child loggers, context propagation of the logger, and ULID
// trace identifiers that tie together the log lines of one operation.
package logging
