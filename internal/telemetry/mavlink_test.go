package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
)

type messageLog struct {
	mu   sync.Mutex
	msgs []message.Message
}

func (l *messageLog) write(m message.Message) error {
	l.mu.Lock()
	l.msgs = append(l.msgs, m)
	l.mu.Unlock()
	return nil
}

func (l *messageLog) last() message.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.msgs) == 0 {
		return nil
	}
	return l.msgs[len(l.msgs)-1]
}

func TestMAVLinkBridge_ArmingHeartbeat(t *testing.T) {
	sent := &messageLog{}
	b := NewMAVLinkBridge(sent.write)

	b.Deliver(NewEvent(EventArmed, nil))
	hb, ok := sent.last().(*common.MessageHeartbeat)
	if !ok {
		t.Fatalf("last message = %T, want heartbeat", sent.last())
	}
	if hb.BaseMode&common.MAV_MODE_FLAG_SAFETY_ARMED == 0 {
		t.Error("armed heartbeat missing SAFETY_ARMED flag")
	}
	if hb.SystemStatus != common.MAV_STATE_ACTIVE {
		t.Errorf("SystemStatus = %v, want ACTIVE", hb.SystemStatus)
	}
	if hb.Type != common.MAV_TYPE_QUADROTOR {
		t.Errorf("Type = %v, want QUADROTOR", hb.Type)
	}

	b.Deliver(NewEvent(EventFailsafe, nil))
	hb = sent.last().(*common.MessageHeartbeat)
	if hb.BaseMode&common.MAV_MODE_FLAG_SAFETY_ARMED != 0 {
		t.Error("failsafe heartbeat still armed")
	}
	if hb.SystemStatus != common.MAV_STATE_STANDBY {
		t.Errorf("SystemStatus = %v, want STANDBY", hb.SystemStatus)
	}
}

func TestMAVLinkBridge_Attitude(t *testing.T) {
	sent := &messageLog{}
	b := NewMAVLinkBridge(sent.write)

	b.Deliver(NewEvent(EventOrientation, map[string]interface{}{"pitch": 90.0, "roll": -45.0, "yaw": 180.0}))

	att, ok := sent.last().(*common.MessageAttitude)
	if !ok {
		t.Fatalf("last message = %T, want attitude", sent.last())
	}
	if math.Abs(float64(att.Pitch)-math.Pi/2) > 1e-6 {
		t.Errorf("Pitch = %v rad, want pi/2", att.Pitch)
	}
	if math.Abs(float64(att.Roll)+math.Pi/4) > 1e-6 {
		t.Errorf("Roll = %v rad, want -pi/4", att.Roll)
	}
	if math.Abs(float64(att.Yaw)-math.Pi) > 1e-6 {
		t.Errorf("Yaw = %v rad, want pi", att.Yaw)
	}
}

func TestMAVLinkBridge_IgnoresIncompleteOrientation(t *testing.T) {
	sent := &messageLog{}
	b := NewMAVLinkBridge(sent.write)

	b.Deliver(NewEvent(EventOrientation, map[string]interface{}{"pitch": 1.0}))
	b.Deliver(NewEvent(EventMotors, map[string]interface{}{"motorFL": 10}))

	if sent.last() != nil {
		t.Errorf("unexpected message %T", sent.last())
	}
}

func TestMAVLinkBridge_RunSendsHeartbeat(t *testing.T) {
	sent := &messageLog{}
	b := NewMAVLinkBridge(sent.write)
	closed := make(chan struct{})
	b.close = func() { close(closed) }

	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)

	waitFor(t, time.Second, func() bool { return sent.last() != nil })
	if _, ok := sent.last().(*common.MessageHeartbeat); !ok {
		t.Errorf("first message = %T, want heartbeat", sent.last())
	}

	cancel()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Run() did not close the node")
	}
}

func TestMAVLinkBridge_WriteFailureLoggedOnce(t *testing.T) {
	var out bytes.Buffer
	log.SetOutput(&out)
	defer log.SetOutput(os.Stderr)

	var fail atomic.Bool
	fail.Store(true)
	b := NewMAVLinkBridge(func(message.Message) error {
		if fail.Load() {
			return errors.New("encode failed")
		}
		return nil
	})

	b.Deliver(NewEvent(EventArmed, nil))
	b.Deliver(NewEvent(EventOrientation, map[string]interface{}{"pitch": 1.0, "roll": 2.0, "yaw": 3.0}))
	b.Deliver(NewEvent(EventDisarmed, nil))

	if got := b.Failed(); got != 3 {
		t.Errorf("Failed() = %d, want 3", got)
	}
	if n := strings.Count(out.String(), "encode failed"); n != 1 {
		t.Errorf("failure logged %d times, want once:\n%s", n, out.String())
	}

	fail.Store(false)
	b.Deliver(NewEvent(EventArmed, nil))
	if !strings.Contains(out.String(), "mavlink write recovered") {
		t.Errorf("recovery not logged:\n%s", out.String())
	}
}
