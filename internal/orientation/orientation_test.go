package orientation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestRetryUntil_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := RetryUntil(context.Background(), "probe", time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RetryUntil() = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryUntil_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := RetryUntil(ctx, "probe", 5*time.Millisecond, func() error { return ErrUnavailable })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RetryUntil() = %v, want deadline exceeded", err)
	}
}

func TestSim(t *testing.T) {
	s := NewSim()
	base := time.Unix(100, 0)
	now := base
	s.SetClock(func() time.Time { return now })

	snap, err := s.Update(context.Background())
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if snap.Pitch != 0 || snap.Roll != s.Amplitude || snap.Yaw != 0 {
		t.Errorf("Update() at start = %+v", snap)
	}

	now = base.Add(s.Period / 4)
	snap, _ = s.Update(context.Background())
	if math.Abs(snap.Pitch-s.Amplitude) > 1e-9 {
		t.Errorf("pitch at quarter period = %v, want %v", snap.Pitch, s.Amplitude)
	}
	if math.Abs(snap.Roll) > 1e-9 {
		t.Errorf("roll at quarter period = %v, want 0", snap.Roll)
	}
}

func TestStatic(t *testing.T) {
	s := NewStatic(1, 2, 3)

	snap, err := s.Update(context.Background())
	if err != nil || snap.Pitch != 1 || snap.Roll != 2 || snap.Yaw != 3 {
		t.Errorf("Update() = %+v, %v", snap, err)
	}

	s.SetErr(ErrUnavailable)
	if _, err := s.Update(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Update() = %v, want UNAVAILABLE", err)
	}
	if s.Polls() != 2 {
		t.Errorf("Polls() = %d, want 2", s.Polls())
	}
}
