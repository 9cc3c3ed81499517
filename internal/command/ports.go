// Package command defines ports (interfaces) for orchestrator operations.
package command

import (
	"context"
	"time"

	"github.com/Moha1423/WIFI-drone/internal/orientation"
	"github.com/Moha1423/WIFI-drone/internal/telemetry"
)

// FlightPort is what the HTTP layer needs from the orchestrator.
type FlightPort interface {
	HandleControl(ctx context.Context, req ControlRequest) Status
	Orientation() orientation.Snapshot
	Status() Status
	Health() Health
}

// AuditLogger writes audit records for flight actions.
type AuditLogger interface {
	LogAction(ctx context.Context, action, subject, result string, latency time.Duration)
}

// EventPublisher receives telemetry events.
type EventPublisher interface {
	Publish(event telemetry.Event) error
}

// Indicator shows the arming state to people near the vehicle.
type Indicator interface {
	SetArmed(armed bool)
	Failsafe()
}
