// Package logging assembles structured slog loggers and formatting helpers used
// across kouri.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so API calls are tagged with the
// operation label and correlation ID of the command that issued them. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
