// Package logger builds the slog loggers used across the access engine and
// keeps attribute names consistent.
//
// New creates a *slog.Logger from functional options: output format (text or
// JSON), level, static attributes and context extractors that copy request
// scoped values into every record.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Log.Env, "permauthority"),
//	    logger.WithLevelName(cfg.Log.Level),
//	)
//
//	log.WarnContext(ctx, "permission fetch failed",
//	    logger.UserID(userID),
//	    logger.Error(err),
//	)
//
// Attribute helpers return an empty slog.Attr for empty input (nil error,
// blank id), which slog skips, so callers need no nil checks. Library types
// that accept a logger default to Discard.
package logger
