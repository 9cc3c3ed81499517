package orientation

import (
	"context"
	"sync"
	"time"
)

// Static returns a fixed attitude. Err, when set, is returned instead.
type Static struct {
	mu    sync.Mutex
	snap  Snapshot
	err   error
	polls int
}

var _ Source = (*Static)(nil)

// NewStatic creates a source fixed at pitch, roll, yaw.
func NewStatic(pitch, roll, yaw float64) *Static {
	return &Static{snap: Snapshot{Pitch: pitch, Roll: roll, Yaw: yaw}}
}

// Set changes the reported attitude.
func (s *Static) Set(pitch, roll, yaw float64) {
	s.mu.Lock()
	s.snap = Snapshot{Pitch: pitch, Roll: roll, Yaw: yaw}
	s.mu.Unlock()
}

// SetErr makes Update fail with err. Nil clears the failure.
func (s *Static) SetErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Polls returns how many times Update was called.
func (s *Static) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// Update returns the fixed attitude.
func (s *Static) Update(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.polls++
	if s.err != nil {
		return Snapshot{}, s.err
	}
	snap := s.snap
	snap.At = time.Now()
	return snap, nil
}
