package mixer

// Drive and stick limits.
const (
	MaxDrive    = 255
	MaxThrottle = 100
	MaxAxis     = 50

	// MaxAxisDrive is the drive offset produced by a full axis deflection.
	MaxAxisDrive = 50
)

// MotorCommand holds one drive level per rotor, each in [0, MaxDrive].
type MotorCommand struct {
	FL int `json:"motorFL"`
	FR int `json:"motorFR"`
	BL int `json:"motorBL"`
	BR int `json:"motorBR"`
}

// Zero is the all-stopped command.
var Zero = MotorCommand{}

// PilotInput is one control request. A nil field is absent.
type PilotInput struct {
	Throttle *int
	Pitch    *int
	Roll     *int
	Yaw      *int
}

// Empty reports whether no axis is present.
func (in PilotInput) Empty() bool {
	return in.Throttle == nil && in.Pitch == nil && in.Roll == nil && in.Yaw == nil
}

// Mix computes the next motor command.
//
// Throttle, when present, re-seeds all four rotors. Pitch, roll and yaw then
// add their offsets in that order. Absent axes contribute nothing, so an armed
// call with no fields returns prev unchanged (after clamping).
func Mix(prev MotorCommand, in PilotInput, armed bool) MotorCommand {
	if !armed {
		return Zero
	}

	out := prev

	if in.Throttle != nil {
		base := scaleThrottle(*in.Throttle)
		out = MotorCommand{FL: base, FR: base, BL: base, BR: base}
	}

	// Positive pitch: nose down, rear rotors push harder.
	if in.Pitch != nil {
		d := axisDrive(*in.Pitch)
		out.FL -= d
		out.FR -= d
		out.BL += d
		out.BR += d
	}

	// Positive roll: left side pushes harder.
	if in.Roll != nil {
		d := axisDrive(*in.Roll)
		out.FL += d
		out.BL += d
		out.FR -= d
		out.BR -= d
	}

	// Positive yaw: FL/BR diagonal pushes harder.
	if in.Yaw != nil {
		d := axisDrive(*in.Yaw)
		out.FL += d
		out.BR += d
		out.FR -= d
		out.BL -= d
	}

	return Clamp(out)
}

// Clamp limits every rotor to [0, MaxDrive].
func Clamp(c MotorCommand) MotorCommand {
	return MotorCommand{
		FL: clamp(c.FL, 0, MaxDrive),
		FR: clamp(c.FR, 0, MaxDrive),
		BL: clamp(c.BL, 0, MaxDrive),
		BR: clamp(c.BR, 0, MaxDrive),
	}
}

// scaleThrottle maps [0,100] onto [0,255] with integer truncation: 50 -> 127.
func scaleThrottle(t int) int {
	t = clamp(t, 0, MaxThrottle)
	return t * MaxDrive / MaxThrottle
}

// axisDrive returns the signed drive offset for a stick deflection.
func axisDrive(v int) int {
	v = clamp(v, -MaxAxis, MaxAxis)
	mag := v
	if mag < 0 {
		mag = -mag
	}
	d := mag * MaxAxisDrive / MaxAxis
	if v < 0 {
		return -d
	}
	return d
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
