package actuator_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Moha1423/WIFI-drone/internal/actuator"
	"github.com/Moha1423/WIFI-drone/internal/actuator/actuatortest"
	"github.com/Moha1423/WIFI-drone/internal/mixer"
)

type pwmCall struct {
	ch, on, off int
}

// mockController records SetPwm calls.
type mockController struct {
	mu      sync.Mutex
	calls   []pwmCall
	failCh  int
	closed  bool
	failErr error
}

func newMockController() *mockController {
	return &mockController{failCh: -1}
}

func (m *mockController) SetPwm(ch, on, off int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, pwmCall{ch, on, off})
	if ch == m.failCh {
		return m.failErr
	}
	return nil
}

func (m *mockController) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// duty reconstructs the 8-bit duty last written to ch.
func (m *mockController) duty(ch int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		c := m.calls[i]
		if c.ch != ch {
			continue
		}
		switch {
		case c.off == 4096:
			return 0
		case c.on == 4096:
			return 255
		default:
			// Invert off = duty*4095/255, rounding up.
			return (c.off*255 + 4094) / 4095
		}
	}
	return 0
}

func TestPCA9685_Conformance(t *testing.T) {
	actuatortest.RunConformance(t, "pca9685", func() (actuator.Output, actuatortest.Readback) {
		ctrl := newMockController()
		out := actuator.NewPCA9685(ctrl, actuator.DefaultChannels)
		return out, func() mixer.MotorCommand {
			return mixer.MotorCommand{FL: ctrl.duty(0), FR: ctrl.duty(1), BL: ctrl.duty(2), BR: ctrl.duty(3)}
		}
	})
}

func TestPCA9685_ChannelMapping(t *testing.T) {
	ctrl := newMockController()
	out := actuator.NewPCA9685(ctrl, actuator.Channels{FL: 7, FR: 6, BL: 5, BR: 4})

	cmd := mixer.MotorCommand{FL: 0, FR: 255, BL: 51, BR: 102}
	if err := out.Write(context.Background(), cmd); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	want := []pwmCall{
		{7, 0, 4096},
		{6, 4096, 0},
		{5, 0, 819},
		{4, 0, 1638},
	}
	if len(ctrl.calls) != len(want) {
		t.Fatalf("got %d SetPwm calls, want %d", len(ctrl.calls), len(want))
	}
	for i, c := range ctrl.calls {
		if c != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, c, want[i])
		}
	}
}

func TestPCA9685_PartialFailureWritesAllChannels(t *testing.T) {
	ctrl := newMockController()
	ctrl.failCh = 1
	ctrl.failErr = errors.New("i2c nack")
	out := actuator.NewPCA9685(ctrl, actuator.DefaultChannels)

	err := out.Write(context.Background(), mixer.Zero)
	if !errors.Is(err, actuator.ErrUnavailable) {
		t.Errorf("Write() = %v, want UNAVAILABLE", err)
	}
	if len(ctrl.calls) != 4 {
		t.Errorf("SetPwm called %d times, want 4", len(ctrl.calls))
	}
}

func TestPCA9685_CloseZeroes(t *testing.T) {
	ctrl := newMockController()
	out := actuator.NewPCA9685(ctrl, actuator.DefaultChannels)
	_ = out.Write(context.Background(), mixer.MotorCommand{FL: 200, FR: 200, BL: 200, BR: 200})

	if err := out.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	for ch := 0; ch < 4; ch++ {
		if d := ctrl.duty(ch); d != 0 {
			t.Errorf("channel %d duty = %d after Close, want 0", ch, d)
		}
	}
	if !ctrl.closed {
		t.Error("controller not closed")
	}
}
