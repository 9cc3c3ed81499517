package indicator

import (
	"context"
	"sync"
	"time"
)

// Pattern is an LED blink pattern.
type Pattern int

const (
	Off Pattern = iota
	Solid
	SlowFlash
	FastFlash
)

// Half-periods of the flash patterns.
const (
	SlowFlashPeriod = 500 * time.Millisecond
	FastFlashPeriod = 50 * time.Millisecond
)

// UpdateInterval is how often Run refreshes the pin.
const UpdateInterval = 10 * time.Millisecond

func (p Pattern) String() string {
	switch p {
	case Off:
		return "off"
	case Solid:
		return "solid"
	case SlowFlash:
		return "slow-flash"
	case FastFlash:
		return "fast-flash"
	default:
		return "unknown"
	}
}

// Pin is a digital output.
type Pin interface {
	High()
	Low()
}

// LED renders a Pattern on a Pin.
type LED struct {
	mu         sync.Mutex
	pin        Pin
	pattern    Pattern
	isOn       bool
	lastToggle time.Time
}

// NewLED returns an LED that starts off.
func NewLED(pin Pin) *LED {
	pin.Low()
	return &LED{pin: pin}
}

// SetArmed shows solid when armed and slow flash when disarmed.
func (l *LED) SetArmed(armed bool) {
	if armed {
		l.SetPattern(Solid)
		return
	}
	l.SetPattern(SlowFlash)
}

// Failsafe shows fast flash.
func (l *LED) Failsafe() {
	l.SetPattern(FastFlash)
}

// SetPattern switches pattern. The new pattern starts with the LED on.
func (l *LED) SetPattern(p Pattern) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p == l.pattern {
		return
	}
	l.pattern = p
	l.lastToggle = time.Time{}
	l.isOn = false
	l.apply(time.Now())
}

// Pattern returns the current pattern.
func (l *LED) Pattern() Pattern {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pattern
}

// Update advances flash patterns to now.
func (l *LED) Update(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.apply(now)
}

func (l *LED) apply(now time.Time) {
	var period time.Duration
	switch l.pattern {
	case Off:
		l.set(false)
		return
	case Solid:
		l.set(true)
		return
	case SlowFlash:
		period = SlowFlashPeriod
	case FastFlash:
		period = FastFlashPeriod
	}

	if l.lastToggle.IsZero() || now.Sub(l.lastToggle) >= period {
		l.set(!l.isOn)
		l.lastToggle = now
	}
}

func (l *LED) set(on bool) {
	if on {
		l.pin.High()
	} else {
		l.pin.Low()
	}
	l.isOn = on
}

// Run refreshes the LED until ctx is cancelled, then turns it off.
func (l *LED) Run(ctx context.Context) {
	ticker := time.NewTicker(UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.SetPattern(Off)
			return
		case now := <-ticker.C:
			l.Update(now)
		}
	}
}
