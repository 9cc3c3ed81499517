//
//
package actuator

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/kidoman/embd"
	"github.com/kidoman/embd/controller/pca9685"
	_ "github.com/kidoman/embd/host/all"

	"github.com/Moha1423/WIFI-drone/internal/config"
	"github.com/Moha1423/WIFI-drone/internal/mixer"
)

// PCA9685 counter resolution and output frequency limits.
const (
	pcaTicks   = 4096
	pcaMaxDuty = pcaTicks - 1
	pcaMinHz   = 24
	pcaMaxHz   = 1526
)

// PWMController is the subset of the PCA9685 driver used here.
type PWMController interface {
	SetPwm(channel, onTime, offTime int) error
	Close() error
}

// PCA9685 drives four rotors through a PCA9685 PWM controller.
type PCA9685 struct {
	mu       sync.Mutex
	ctrl     PWMController
	channels Channels
	closer   func() error
}

var _ Output = (*PCA9685)(nil)

// NewPCA9685 wraps an already configured controller.
func NewPCA9685(ctrl PWMController, channels Channels) *PCA9685 {
	return &PCA9685{ctrl: ctrl, channels: channels}
}

// OpenPCA9685 opens the I2C bus and the PWM controller described by cfg.
func OpenPCA9685(cfg config.MotorsConfig) (*PCA9685, error) {
	if err := embd.InitI2C(); err != nil {
		return nil, fmt.Errorf("%w: i2c init: %v", ErrUnavailable, err)
	}

	bus := embd.NewI2CBus(byte(cfg.I2CBus))
	ctrl := pca9685.New(bus, byte(cfg.Address))

	freq := cfg.PWMFrequencyHz
	if freq < pcaMinHz || freq > pcaMaxHz {
		clamped := freq
		if clamped < pcaMinHz {
			clamped = pcaMinHz
		} else {
			clamped = pcaMaxHz
		}
		log.Printf("actuator: pca9685 cannot run at %d Hz, using %d Hz", freq, clamped)
		freq = clamped
	}
	ctrl.Freq = freq

	out := NewPCA9685(ctrl, Channels{
		FL: cfg.FrontLeft,
		FR: cfg.FrontRight,
		BL: cfg.BackLeft,
		BR: cfg.BackRight,
	})
	out.closer = func() error {
		if err := bus.Close(); err != nil {
			return err
		}
		return embd.CloseI2C()
	}

	log.Printf("actuator: pca9685 on bus %d addr %#x at %d Hz", cfg.I2CBus, cfg.Address, freq)
	return out, nil
}

// Write sets all four rotor channels.
func (p *PCA9685) Write(ctx context.Context, cmd mixer.MotorCommand) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := CheckRange(cmd); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	writes := []struct {
		ch   int
		duty int
	}{
		{p.channels.FL, cmd.FL},
		{p.channels.FR, cmd.FR},
		{p.channels.BL, cmd.BL},
		{p.channels.BR, cmd.BR},
	}

	// Attempt every channel so a single bad write never leaves others stale.
	var firstErr error
	for _, w := range writes {
		on, off := dutyTicks(w.duty)
		if err := p.ctrl.SetPwm(w.ch, on, off); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: channel %d: %v", ErrUnavailable, w.ch, err)
		}
	}
	return firstErr
}

// Close stops the rotors and releases the bus.
func (p *PCA9685) Close() error {
	_ = p.Write(context.Background(), mixer.Zero)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ctrl.Close(); err != nil {
		return err
	}
	if p.closer != nil {
		return p.closer()
	}
	return nil
}

// dutyTicks converts an 8-bit duty into PCA9685 on/off counts. The ends use
// the full-off and full-on bits so a stopped rotor carries no glitch pulse.
func dutyTicks(duty int) (on, off int) {
	switch {
	case duty <= 0:
		return 0, pcaTicks
	case duty >= mixer.MaxDrive:
		return pcaTicks, 0
	default:
		return 0, duty * pcaMaxDuty / mixer.MaxDrive
	}
}
