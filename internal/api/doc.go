// Package api implements the HTTP API of the pairing service.
//
// This package provides:
//   - GET /v1/device/code for devices requesting a pairing code
//   - POST /api/v1/auth/login issuing short-lived JWT access tokens
//   - PUT /api/v1/account/password for authenticated password changes
//   - health and metrics endpoints for monitoring
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Security
//
// The device code and login routes are rate limited per client IP with a
// token bucket. The password route requires a bearer token signed with
// security.jwt.secret. Pairing tokens and passwords are never logged.
//
// # Errors
//
// Every error response uses the same body:
//
//	{"status": 400, "code": "bad_request", "message": "state is required"}
package api
