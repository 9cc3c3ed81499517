//
//
package config

import (
	"fmt"
)

// Validate enforces the flight configuration rules.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateFlight(cfg.Flight); err != nil {
		return fmt.Errorf("flight validation failed: %w", err)
	}

	if err := validateMotors(cfg.Motors); err != nil {
		return fmt.Errorf("motors validation failed: %w", err)
	}

	if err := validateSensor(cfg.Sensor); err != nil {
		return fmt.Errorf("sensor validation failed: %w", err)
	}

	if err := validateAuth(cfg.Auth); err != nil {
		return fmt.Errorf("auth validation failed: %w", err)
	}

	if err := validateTelemetry(cfg.Telemetry); err != nil {
		return fmt.Errorf("telemetry validation failed: %w", err)
	}

	if cfg.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}

	if cfg.MAVLink.Endpoint != "" && (cfg.MAVLink.SystemID < 1 || cfg.MAVLink.SystemID > 255) {
		return fmt.Errorf("mavlink system id must be in 1..255, got %d", cfg.MAVLink.SystemID)
	}

	return nil
}

func validateFlight(f FlightConfig) error {
	if f.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", f.PollInterval)
	}

	// A failsafe shorter than one tick could never be observed in time.
	if f.FailsafeTimeout <= f.PollInterval {
		return fmt.Errorf("failsafe timeout %v must be > poll interval %v", f.FailsafeTimeout, f.PollInterval)
	}

	if f.StatusLogInterval < 0 {
		return fmt.Errorf("status log interval must be non-negative, got %v", f.StatusLogInterval)
	}

	return nil
}

func validateMotors(m MotorsConfig) error {
	switch m.Driver {
	case DriverPCA9685, DriverSim:
	default:
		return fmt.Errorf("unknown motor driver %q", m.Driver)
	}

	if m.ResolutionBits != 8 {
		return fmt.Errorf("resolution must be 8 bits, got %d", m.ResolutionBits)
	}

	if m.PWMFrequencyHz <= 0 {
		return fmt.Errorf("pwm frequency must be positive, got %d", m.PWMFrequencyHz)
	}

	channels := map[string]int{
		"frontLeft":  m.FrontLeft,
		"frontRight": m.FrontRight,
		"backLeft":   m.BackLeft,
		"backRight":  m.BackRight,
	}
	seen := make(map[int]string, len(channels))
	for name, ch := range channels {
		if ch < 0 || ch > 15 {
			return fmt.Errorf("%s channel %d out of range 0..15", name, ch)
		}
		if other, dup := seen[ch]; dup {
			return fmt.Errorf("channel %d assigned to both %s and %s", ch, other, name)
		}
		seen[ch] = name
	}

	return nil
}

func validateSensor(s SensorConfig) error {
	switch s.Driver {
	case DriverMPU6050, DriverSim:
	default:
		return fmt.Errorf("unknown sensor driver %q", s.Driver)
	}

	if s.RetryInterval <= 0 {
		return fmt.Errorf("retry interval must be positive, got %v", s.RetryInterval)
	}

	if s.SettleDelay < 0 {
		return fmt.Errorf("settle delay must be non-negative, got %v", s.SettleDelay)
	}

	if s.CalibrationSamples < 1 {
		return fmt.Errorf("calibration samples must be >= 1, got %d", s.CalibrationSamples)
	}

	return nil
}

func validateAuth(a AuthConfig) error {
	if !a.Enabled {
		return nil
	}

	switch a.Algorithm {
	case "HS256":
		if a.SecretKey == "" {
			return fmt.Errorf("HS256 requires a secret key")
		}
	case "RS256":
		if a.PublicKeyPEM == "" {
			return fmt.Errorf("RS256 requires a public key")
		}
	default:
		return fmt.Errorf("unsupported algorithm %q", a.Algorithm)
	}

	return nil
}

func validateTelemetry(t TelemetryConfig) error {
	if t.EventBufferSize < 1 {
		return fmt.Errorf("event buffer size must be >= 1, got %d", t.EventBufferSize)
	}

	if t.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive, got %v", t.HeartbeatInterval)
	}

	if t.OrientationInterval < 0 {
		return fmt.Errorf("orientation interval must be non-negative, got %v", t.OrientationInterval)
	}

	return nil
}
