// Package server holds the HTTP server configuration and constants.
//
// The start command owns the Fiber application; this package only defines the
// listening port, the deployment environment, the metrics path and the CORS
// origins, plus the set of valid environments.
package server
