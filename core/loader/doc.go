// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which names it, reports
// whether it is enabled and mounts its routes.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager holds the registry of features. Register adds one and LoadAll
// loads every enabled feature in registration order, stopping at the first
// error. The service registers auth, syncjob and insights.
package loader
