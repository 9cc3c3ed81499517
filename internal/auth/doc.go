// Package auth verifies bearer tokens and enforces scopes on the flight API.
//
// Tokens are JWTs signed with HS256 (shared secret) or RS256 (PEM public key).
// The control scope is required to arm and fly; the telemetry scope to stream
// events. /api/v1/health is always open.
package auth
