// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - rayid: tags every request with a ray id (X-Ray-ID), stored in the
//     request locals and echoed in the response for tracing.
//   - auth: verifies the bearer token issued at login, loads the tenant and
//     rejects unknown or inactive tenants before the protected routes run.
//
// rayid is registered globally; auth is registered on the protected route groups.
package middleware
