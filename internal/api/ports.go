// Package api defines ports (interfaces) for API server dependencies.
package api

import (
	"context"
	"net/http"

	"github.com/Moha1423/WIFI-drone/internal/command"
	"github.com/Moha1423/WIFI-drone/internal/telemetry"
)

// TelemetryPort is the SSE side of the telemetry hub.
type TelemetryPort interface {
	Subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Compile-time assertions for port conformance
var _ command.FlightPort = (*command.Orchestrator)(nil)
var _ TelemetryPort = (*telemetry.Hub)(nil)
var _ http.Handler = (*telemetry.WebSocketStream)(nil)
