// Package telemetry fans flight events out to observers.
//
// The Hub assigns monotonic event IDs, keeps the last N events for SSE
// reconnection via Last-Event-ID and forwards every event to registered
// sinks. Sinks in this package bridge the stream to WebSocket clients, an
// MQTT broker and MAVLink ground stations.
package telemetry
