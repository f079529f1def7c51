// Package logging provides a tiny abstraction over slog so the analysis
// engine can depend on a minimal interface (Logger) while allowing callers
// to plug any structured logger.
package logging
