// Package api implements the HTTP surface of the flight daemon.
//
// /control and /sensor keep the exact shapes the pilot web UI expects: flat
// JSON, lenient parameter parsing, no error responses for bad input. The
// /api/v1 routes (health, SSE telemetry, WebSocket) use the unified envelope.
package api
