// Package logging assembles structured slog loggers for the stemmix service
// and CLI.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the request id, stage and stem index carried on the context.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
