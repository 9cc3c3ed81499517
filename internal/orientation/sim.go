package orientation

import (
	"context"
	"math"
	"sync"
	"time"
)

// Sim produces a slow sine-wave attitude so the stack can run without
// hardware.
type Sim struct {
	// Amplitude in degrees for pitch and roll.
	Amplitude float64
	// Period of one full oscillation.
	Period time.Duration
	// YawRate in degrees per second.
	YawRate float64

	mu    sync.Mutex
	now   func() time.Time
	start time.Time
}

var _ Source = (*Sim)(nil)

// NewSim creates a simulated source with gentle defaults.
func NewSim() *Sim {
	return &Sim{
		Amplitude: 10,
		Period:    8 * time.Second,
		YawRate:   5,
		now:       time.Now,
	}
}

// SetClock replaces the time source.
func (s *Sim) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.start = time.Time{}
	s.mu.Unlock()
}

// Update returns the attitude at the current time.
func (s *Sim) Update(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.start.IsZero() {
		s.start = now
	}
	elapsed := now.Sub(s.start).Seconds()
	phase := 2 * math.Pi * elapsed / s.Period.Seconds()

	return Snapshot{
		Pitch: s.Amplitude * math.Sin(phase),
		Roll:  s.Amplitude * math.Cos(phase),
		Yaw:   wrap(s.YawRate * elapsed),
		At:    now,
	}, nil
}
