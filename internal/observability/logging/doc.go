// Package logging configures log/slog for the refresher.
//
// The format and level come from LOG_FORMAT (json or text, default json) and
// LOG_LEVEL (debug, info, warn, error, default info). A run-scoped logger
// carrying run_id travels in the context:
//
//	ctx = logging.WithLogger(ctx, logging.WithRunID(slog.Default(), runID))
//	logging.FromContext(ctx).Info("scan finished")
package logging
