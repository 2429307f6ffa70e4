// Package logger is a small factory for configured slog.Logger instances.
//
// It standardizes how the module's components log: JSON output at info level
// by default for log aggregation, with a text/debug development preset. The
// scheduler and client packages accept any *slog.Logger; this package just
// removes the boilerplate of building one.
//
//	log := logger.New(
//	    logger.WithDevelopment("data-sync"),
//	)
//	c, err := client.NewHTTP(baseURL, client.WithLogger(log))
package logger
