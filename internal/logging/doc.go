// Package logging assembles structured slog loggers used across docket
// services.
//
// It centralizes level and format plumbing, standardizes the attribute keys
// components attach to log lines, and exposes a no-op logger for tests and
// wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
