package orientation

import (
	"context"
	"errors"
	"log"
	"time"
)

// Sensor errors.
var (
	ErrNotFound    = errors.New("NOT_FOUND")
	ErrUnavailable = errors.New("UNAVAILABLE")
)

// Snapshot is one attitude sample in degrees.
type Snapshot struct {
	Pitch float64   `json:"pitch"`
	Roll  float64   `json:"roll"`
	Yaw   float64   `json:"yaw"`
	At    time.Time `json:"-"`
}

// Source produces attitude samples.
type Source interface {
	// Update polls the sensor once and returns the new snapshot.
	Update(ctx context.Context) (Snapshot, error)
}

// RetryUntil calls fn until it succeeds or ctx is done, sleeping interval
// between attempts and logging every failure.
func RetryUntil(ctx context.Context, what string, interval time.Duration, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		log.Printf("orientation: %s failed (attempt %d): %v", what, attempt, err)

		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
