package config

import (
	"testing"
	"time"
)

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "baseline",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero_poll_interval",
			modify:  func(c *Config) { c.Flight.PollInterval = 0 },
			wantErr: true,
		},
		{
			name: "failsafe_not_longer_than_tick",
			modify: func(c *Config) {
				c.Flight.PollInterval = 50 * time.Millisecond
				c.Flight.FailsafeTimeout = 50 * time.Millisecond
			},
			wantErr: true,
		},
		{
			name:    "ten_bit_resolution",
			modify:  func(c *Config) { c.Motors.ResolutionBits = 10 },
			wantErr: true,
		},
		{
			name:    "duplicate_channel",
			modify:  func(c *Config) { c.Motors.BackRight = c.Motors.FrontLeft },
			wantErr: true,
		},
		{
			name:    "channel_out_of_range",
			modify:  func(c *Config) { c.Motors.BackRight = 16 },
			wantErr: true,
		},
		{
			name:    "unknown_motor_driver",
			modify:  func(c *Config) { c.Motors.Driver = "ledc" },
			wantErr: true,
		},
		{
			name:    "unknown_sensor_driver",
			modify:  func(c *Config) { c.Sensor.Driver = "bno055" },
			wantErr: true,
		},
		{
			name:    "sim_drivers",
			modify:  func(c *Config) { c.Motors.Driver = DriverSim; c.Sensor.Driver = DriverSim },
			wantErr: false,
		},
		{
			name:    "auth_without_secret",
			modify:  func(c *Config) { c.Auth.Enabled = true },
			wantErr: true,
		},
		{
			name: "auth_with_secret",
			modify: func(c *Config) {
				c.Auth.Enabled = true
				c.Auth.SecretKey = "k"
			},
			wantErr: false,
		},
		{
			name: "rs256_without_key",
			modify: func(c *Config) {
				c.Auth.Enabled = true
				c.Auth.Algorithm = "RS256"
			},
			wantErr: true,
		},
		{
			name:    "empty_event_buffer",
			modify:  func(c *Config) { c.Telemetry.EventBufferSize = 0 },
			wantErr: true,
		},
		{
			name:    "mavlink_bad_system_id",
			modify:  func(c *Config) { c.MAVLink.Endpoint = "127.0.0.1:14550"; c.MAVLink.SystemID = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Baseline()
			tt.modify(cfg)

			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Error("Validate(nil) = nil, want error")
	}
}
