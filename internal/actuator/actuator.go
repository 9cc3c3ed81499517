package actuator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Moha1423/WIFI-drone/internal/mixer"
)

// Normalized actuator errors.
var (
	ErrInvalidRange = errors.New("INVALID_RANGE")
	ErrUnavailable  = errors.New("UNAVAILABLE")
)

// Output applies motor commands to hardware.
type Output interface {
	// Write sets all four channels. It must be safe to call with mixer.Zero
	// at any time, including after a previous write failed.
	Write(ctx context.Context, cmd mixer.MotorCommand) error

	// Close stops all channels and releases the hardware.
	Close() error
}

// Channels maps rotor position to a hardware channel index.
type Channels struct {
	FL, FR, BL, BR int
}

// DefaultChannels wires FL, FR, BL, BR to channels 0..3.
var DefaultChannels = Channels{FL: 0, FR: 1, BL: 2, BR: 3}

// CheckRange returns ErrInvalidRange if any rotor lies outside [0, MaxDrive].
func CheckRange(cmd mixer.MotorCommand) error {
	for _, v := range []int{cmd.FL, cmd.FR, cmd.BL, cmd.BR} {
		if v < 0 || v > mixer.MaxDrive {
			return fmt.Errorf("%w: drive %d outside 0..%d", ErrInvalidRange, v, mixer.MaxDrive)
		}
	}
	return nil
}
