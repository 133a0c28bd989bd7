// Package auth provides tenant registration, login and profile lookup.
//
// Passwords are hashed with bcrypt. Register and Login return a signed bearer
// token issued by core/token. Requests are validated with go-playground
// validator, including the myshopify rule for shop domains.
//
// # HTTP Endpoints
//
//   - POST /api/auth/register : Creates a tenant (409 when email or domain is taken).
//   - POST /api/auth/login : Returns a token (401 bad credentials, 403 inactive).
//   - GET /api/auth/me : Returns the authenticated tenant.
package auth
