// Package logger builds the application's zap logger.
//
// A "debug" level selects zap's development configuration (ISO8601 timestamps,
// stack traces); any other level uses the production configuration at that level.
// The format is either "console" or "json".
//
// # Request scoping
//
// WithRayID decorates a logger with the ray_id and tenant_id stored in the Fiber
// request locals by the rayid and auth middleware, so every log line of a request
// can be correlated.
//
// # Usage
//
//	l, err := logger.New(&cfg.Log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Sync()
package logger
