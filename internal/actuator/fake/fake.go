// Package fake provides an in-memory actuator for tests and simulation.
package fake

import (
	"context"
	"sync"

	"github.com/Moha1423/WIFI-drone/internal/actuator"
	"github.com/Moha1423/WIFI-drone/internal/mixer"
)

// Recorder implements actuator.Output by remembering every write.
type Recorder struct {
	mu     sync.Mutex
	writes []mixer.MotorCommand
	total  int
	limit  int
	closed bool

	// WriteErr, when set, is returned by Write after the command is recorded.
	WriteErr error
}

var _ actuator.Output = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// NewBoundedRecorder keeps only the last limit commands. Used by the
// simulated vehicle, which runs indefinitely.
func NewBoundedRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Write records cmd.
func (r *Recorder) Write(ctx context.Context, cmd mixer.MotorCommand) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := actuator.CheckRange(cmd); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return actuator.ErrUnavailable
	}
	r.record(cmd)
	return r.WriteErr
}

// Close marks the recorder closed after recording a final zero write.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.closed {
		r.record(mixer.Zero)
		r.closed = true
	}
	return nil
}

func (r *Recorder) record(cmd mixer.MotorCommand) {
	r.writes = append(r.writes, cmd)
	r.total++
	if r.limit > 0 && len(r.writes) > r.limit {
		r.writes = append(r.writes[:0], r.writes[len(r.writes)-r.limit:]...)
	}
}

// SetWriteErr changes the injected write error.
func (r *Recorder) SetWriteErr(err error) {
	r.mu.Lock()
	r.WriteErr = err
	r.mu.Unlock()
}

// Last returns the most recent command, or mixer.Zero if nothing was written.
func (r *Recorder) Last() mixer.MotorCommand {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.writes) == 0 {
		return mixer.Zero
	}
	return r.writes[len(r.writes)-1]
}

// Writes returns a copy of the retained commands.
func (r *Recorder) Writes() []mixer.MotorCommand {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]mixer.MotorCommand, len(r.writes))
	copy(out, r.writes)
	return out
}

// Count returns the number of writes, including any no longer retained.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
