// Package logging builds the slog loggers used across the pipeline.
//
// It offers a console handler that renders compact key=value lines with the
// component promoted into the message prefix, and a JSON handler for
// machine-readable output. Attr aliases keep call sites short and let tests
// swap in the no-op logger.
package logging
