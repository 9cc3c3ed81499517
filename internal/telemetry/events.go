package telemetry

import (
	"time"
)

// Event types published by the flight core.
const (
	EventReady       = "ready"
	EventHeartbeat   = "heartbeat"
	EventArmed       = "armed"
	EventDisarmed    = "disarmed"
	EventFailsafe    = "failsafe"
	EventMotors      = "motors"
	EventOrientation = "orientation"
	EventFault       = "fault"
)

// Event is one telemetry record.
type Event struct {
	ID   int64                  `json:"id,omitempty"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// NewEvent builds an event stamped with the current UTC time.
func NewEvent(eventType string, data map[string]interface{}) Event {
	if data == nil {
		data = make(map[string]interface{})
	}
	if _, ok := data["ts"]; !ok {
		data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	return Event{Type: eventType, Data: data}
}

// Sink receives every published event. Deliver must not block.
type Sink interface {
	Deliver(event Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Deliver calls f(event).
func (f SinkFunc) Deliver(event Event) { f(event) }

// number extracts a float64 from event data regardless of numeric type.
func number(data map[string]interface{}, key string) (float64, bool) {
	switch v := data[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
