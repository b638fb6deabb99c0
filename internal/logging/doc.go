// Package logging provides structured logging for adaptui.
//
// [Logger] wraps log/slog with a JSON handler. Logs go to an adaptui.log
// file in a state directory, or to stderr when no directory is given.
// Child loggers carry persistent attributes so every record from a trigger
// can be correlated:
//
//	logger, err := logging.NewLogger(stateDir, "info")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	tl := logger.WithTrigger("menu").WithElement("toolbar")
//	tl.Info("layout applied", "cost", 0.42, "previous_cost", 0.71)
//
// Use [NopLogger] in tests or when logging is disabled. [Logger.Slog]
// exposes a plain *slog.Logger for libraries that want one (the HTTP
// server middleware, for example).
//
// # Thread Safety
//
// Logger is safe for concurrent use.
package logging
