package telemetry

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"

	"github.com/Moha1423/WIFI-drone/internal/config"
)

const mavlinkHeartbeatInterval = time.Second

// MAVLinkBridge reports arming state and attitude to MAVLink ground stations
// as HEARTBEAT and ATTITUDE messages.
type MAVLinkBridge struct {
	write func(message.Message) error
	close func()
	boot  time.Time

	mu       sync.Mutex
	armed    bool
	writeErr error
	failed   int
}

var _ Sink = (*MAVLinkBridge)(nil)

// NewMAVLinkBridge creates a bridge that sends through write.
func NewMAVLinkBridge(write func(message.Message) error) *MAVLinkBridge {
	return &MAVLinkBridge{write: write, boot: time.Now()}
}

// DialMAVLink opens a UDP client node towards cfg.Endpoint.
func DialMAVLink(cfg config.MAVLinkConfig) (*MAVLinkBridge, error) {
	node, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints: []gomavlib.EndpointConf{
			gomavlib.EndpointUDPClient{Address: cfg.Endpoint},
		},
		Dialect:     common.Dialect,
		OutVersion:  gomavlib.V2,
		OutSystemID: byte(cfg.SystemID),
	})
	if err != nil {
		return nil, fmt.Errorf("mavlink node %s: %w", cfg.Endpoint, err)
	}

	b := NewMAVLinkBridge(node.WriteMessageAll)
	b.close = func() { node.Close() }
	log.Printf("telemetry: mavlink streaming to %s as system %d", cfg.Endpoint, cfg.SystemID)
	return b, nil
}

// Deliver tracks arming and forwards attitude samples.
func (b *MAVLinkBridge) Deliver(event Event) {
	switch event.Type {
	case EventArmed:
		b.setArmed(true)
		b.send(b.heartbeat())
	case EventDisarmed, EventFailsafe:
		b.setArmed(false)
		b.send(b.heartbeat())
	case EventOrientation:
		pitch, ok1 := number(event.Data, "pitch")
		roll, ok2 := number(event.Data, "roll")
		yaw, ok3 := number(event.Data, "yaw")
		if ok1 && ok2 && ok3 {
			b.send(b.attitude(pitch, roll, yaw, time.Now()))
		}
	}
}

// Run sends a HEARTBEAT every second until ctx is cancelled, then closes the node.
func (b *MAVLinkBridge) Run(ctx context.Context) {
	ticker := time.NewTicker(mavlinkHeartbeatInterval)
	defer ticker.Stop()
	defer func() {
		if b.close != nil {
			b.close()
		}
	}()

	b.send(b.heartbeat())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.send(b.heartbeat())
		}
	}
}

// send writes m, logging the first failure of a streak and the recovery.
func (b *MAVLinkBridge) send(m message.Message) {
	err := b.write(m)

	b.mu.Lock()
	prev := b.writeErr
	b.writeErr = err
	if err != nil {
		b.failed++
	}
	b.mu.Unlock()

	switch {
	case err != nil && prev == nil:
		log.Printf("telemetry: mavlink write %T: %v", m, err)
	case err == nil && prev != nil:
		log.Printf("telemetry: mavlink write recovered")
	}
}

// Failed returns how many messages could not be written.
func (b *MAVLinkBridge) Failed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed
}

func (b *MAVLinkBridge) setArmed(armed bool) {
	b.mu.Lock()
	b.armed = armed
	b.mu.Unlock()
}

func (b *MAVLinkBridge) heartbeat() *common.MessageHeartbeat {
	b.mu.Lock()
	armed := b.armed
	b.mu.Unlock()

	msg := &common.MessageHeartbeat{
		Type:           common.MAV_TYPE_QUADROTOR,
		Autopilot:      common.MAV_AUTOPILOT_GENERIC,
		BaseMode:       common.MAV_MODE_FLAG_MANUAL_INPUT_ENABLED,
		SystemStatus:   common.MAV_STATE_STANDBY,
		MavlinkVersion: 3,
	}
	if armed {
		msg.BaseMode |= common.MAV_MODE_FLAG_SAFETY_ARMED
		msg.SystemStatus = common.MAV_STATE_ACTIVE
	}
	return msg
}

// attitude converts degrees to the radians MAVLink expects.
func (b *MAVLinkBridge) attitude(pitch, roll, yaw float64, now time.Time) *common.MessageAttitude {
	toRad := math.Pi / 180
	return &common.MessageAttitude{
		TimeBootMs: uint32(now.Sub(b.boot) / time.Millisecond),
		Roll:       float32(roll * toRad),
		Pitch:      float32(pitch * toRad),
		Yaw:        float32(yaw * toRad),
	}
}
