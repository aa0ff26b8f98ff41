// Package logging constructs the slog loggers used across inlet and holds
// the shared attribute helpers and field-name constants.
package logging
