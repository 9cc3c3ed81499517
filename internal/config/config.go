package config

import (
	"time"
)

// Config is the complete daemon configuration.
type Config struct {
	Flight    FlightConfig    `yaml:"flight" toml:"flight"`
	Motors    MotorsConfig    `yaml:"motors" toml:"motors"`
	Sensor    SensorConfig    `yaml:"sensor" toml:"sensor"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Assets    AssetsConfig    `yaml:"assets" toml:"assets"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Audit     AuditConfig     `yaml:"audit" toml:"audit"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	MQTT      MQTTConfig      `yaml:"mqtt" toml:"mqtt"`
	MAVLink   MAVLinkConfig   `yaml:"mavlink" toml:"mavlink"`
	LED       LEDConfig       `yaml:"led" toml:"led"`
}

// FlightConfig holds the control loop timing.
type FlightConfig struct {
	// FailsafeTimeout is the maximum silence on the control channel before
	// the vehicle disarms itself.
	FailsafeTimeout time.Duration `yaml:"failsafeTimeout" toml:"failsafeTimeout" env:"WIFIDRONE_FLIGHT_FAILSAFE_TIMEOUT"`

	// PollInterval is the control loop tick: one sensor poll and one
	// failsafe evaluation per tick.
	PollInterval time.Duration `yaml:"pollInterval" toml:"pollInterval" env:"WIFIDRONE_FLIGHT_POLL_INTERVAL"`

	// StatusLogInterval is how often motor and orientation values are
	// logged while armed. Zero disables the status line.
	StatusLogInterval time.Duration `yaml:"statusLogInterval" toml:"statusLogInterval" env:"WIFIDRONE_FLIGHT_STATUS_LOG_INTERVAL"`
}

// MotorsConfig describes the four PWM drive channels.
type MotorsConfig struct {
	Driver         string `yaml:"driver" toml:"driver" env:"WIFIDRONE_MOTORS_DRIVER"`
	PWMFrequencyHz int    `yaml:"pwmFrequencyHz" toml:"pwmFrequencyHz" env:"WIFIDRONE_MOTORS_PWM_FREQUENCY_HZ"`
	ResolutionBits int    `yaml:"resolutionBits" toml:"resolutionBits" env:"WIFIDRONE_MOTORS_RESOLUTION_BITS"`
	I2CBus         int    `yaml:"i2cBus" toml:"i2cBus" env:"WIFIDRONE_MOTORS_I2C_BUS"`
	Address        int    `yaml:"address" toml:"address" env:"WIFIDRONE_MOTORS_ADDRESS"`

	// Channels maps rotor position to output channel on the PWM controller.
	FrontLeft  int `yaml:"frontLeft" toml:"frontLeft" env:"WIFIDRONE_MOTORS_CHANNEL_FL"`
	FrontRight int `yaml:"frontRight" toml:"frontRight" env:"WIFIDRONE_MOTORS_CHANNEL_FR"`
	BackLeft   int `yaml:"backLeft" toml:"backLeft" env:"WIFIDRONE_MOTORS_CHANNEL_BL"`
	BackRight  int `yaml:"backRight" toml:"backRight" env:"WIFIDRONE_MOTORS_CHANNEL_BR"`
}

// SensorConfig describes the orientation sensor.
type SensorConfig struct {
	Driver             string        `yaml:"driver" toml:"driver" env:"WIFIDRONE_SENSOR_DRIVER"`
	I2CBus             int           `yaml:"i2cBus" toml:"i2cBus" env:"WIFIDRONE_SENSOR_I2C_BUS"`
	Address            int           `yaml:"address" toml:"address" env:"WIFIDRONE_SENSOR_ADDRESS"`
	CalibrationSamples int           `yaml:"calibrationSamples" toml:"calibrationSamples" env:"WIFIDRONE_SENSOR_CALIBRATION_SAMPLES"`
	RetryInterval      time.Duration `yaml:"retryInterval" toml:"retryInterval" env:"WIFIDRONE_SENSOR_RETRY_INTERVAL"`
	SettleDelay        time.Duration `yaml:"settleDelay" toml:"settleDelay" env:"WIFIDRONE_SENSOR_SETTLE_DELAY"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr" toml:"addr" env:"WIFIDRONE_SERVER_ADDR"`
	ReadTimeout  time.Duration `yaml:"readTimeout" toml:"readTimeout" env:"WIFIDRONE_SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"writeTimeout" toml:"writeTimeout" env:"WIFIDRONE_SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idleTimeout" toml:"idleTimeout" env:"WIFIDRONE_SERVER_IDLE_TIMEOUT"`
}

// AssetsConfig points at the pilot web UI files.
type AssetsConfig struct {
	Dir string `yaml:"dir" toml:"dir" env:"WIFIDRONE_ASSETS_DIR"`
}

// AuthConfig enables bearer token checks on control and telemetry routes.
type AuthConfig struct {
	Enabled      bool   `yaml:"enabled" toml:"enabled" env:"WIFIDRONE_AUTH_ENABLED"`
	Algorithm    string `yaml:"algorithm" toml:"algorithm" env:"WIFIDRONE_AUTH_ALGORITHM"`
	SecretKey    string `yaml:"secretKey" toml:"secretKey" env:"WIFIDRONE_AUTH_SECRET_KEY"`
	PublicKeyPEM string `yaml:"publicKeyPem" toml:"publicKeyPem" env:"WIFIDRONE_AUTH_PUBLIC_KEY_PEM"`
}

// AuditConfig controls the flight audit log.
type AuditConfig struct {
	Dir        string `yaml:"dir" toml:"dir" env:"WIFIDRONE_AUDIT_DIR"`
	MaxSizeMB  int    `yaml:"maxSizeMb" toml:"maxSizeMb" env:"WIFIDRONE_AUDIT_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"maxBackups" toml:"maxBackups" env:"WIFIDRONE_AUDIT_MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"maxAgeDays" toml:"maxAgeDays" env:"WIFIDRONE_AUDIT_MAX_AGE_DAYS"`
}

// LogConfig controls the optional rotated log file. Stderr is always written.
type LogConfig struct {
	File       string `yaml:"file" toml:"file" env:"WIFIDRONE_LOG_FILE"`
	MaxSizeMB  int    `yaml:"maxSizeMb" toml:"maxSizeMb" env:"WIFIDRONE_LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"maxBackups" toml:"maxBackups" env:"WIFIDRONE_LOG_MAX_BACKUPS"`
}

// TelemetryConfig controls the event hub.
type TelemetryConfig struct {
	EventBufferSize     int           `yaml:"eventBufferSize" toml:"eventBufferSize" env:"WIFIDRONE_TELEMETRY_EVENT_BUFFER_SIZE"`
	HeartbeatInterval   time.Duration `yaml:"heartbeatInterval" toml:"heartbeatInterval" env:"WIFIDRONE_TELEMETRY_HEARTBEAT_INTERVAL"`
	OrientationInterval time.Duration `yaml:"orientationInterval" toml:"orientationInterval" env:"WIFIDRONE_TELEMETRY_ORIENTATION_INTERVAL"`
}

// MQTTConfig enables the MQTT bridge when Broker is set.
type MQTTConfig struct {
	Broker   string `yaml:"broker" toml:"broker" env:"WIFIDRONE_MQTT_BROKER"`
	Topic    string `yaml:"topic" toml:"topic" env:"WIFIDRONE_MQTT_TOPIC"`
	ClientID string `yaml:"clientId" toml:"clientId" env:"WIFIDRONE_MQTT_CLIENT_ID"`
}

// MAVLinkConfig enables the MAVLink bridge when Endpoint is set.
type MAVLinkConfig struct {
	Endpoint string `yaml:"endpoint" toml:"endpoint" env:"WIFIDRONE_MAVLINK_ENDPOINT"`
	SystemID int    `yaml:"systemId" toml:"systemId" env:"WIFIDRONE_MAVLINK_SYSTEM_ID"`
}

// LEDConfig drives the armed indicator LED.
type LEDConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled" env:"WIFIDRONE_LED_ENABLED"`
	Pin     int  `yaml:"pin" toml:"pin" env:"WIFIDRONE_LED_PIN"`
}

// Baseline returns the flight defaults. The failsafe, tick and PWM values
// match the stock airframe firmware.
func Baseline() *Config {
	return &Config{
		Flight: FlightConfig{
			FailsafeTimeout:   2 * time.Second,
			PollInterval:      10 * time.Millisecond,
			StatusLogInterval: 1 * time.Second,
		},
		Motors: MotorsConfig{
			Driver:         DriverPCA9685,
			PWMFrequencyHz: 5000,
			ResolutionBits: 8,
			I2CBus:         1,
			Address:        0x40,
			FrontLeft:      0,
			FrontRight:     1,
			BackLeft:       2,
			BackRight:      3,
		},
		Sensor: SensorConfig{
			Driver:             DriverMPU6050,
			I2CBus:             1,
			Address:            0x68,
			CalibrationSamples: 500,
			RetryInterval:      500 * time.Millisecond,
			SettleDelay:        1 * time.Second,
		},
		Server: ServerConfig{
			Addr:         ":80",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Assets: AssetsConfig{
			Dir: "data",
		},
		Auth: AuthConfig{
			Algorithm: "HS256",
		},
		Audit: AuditConfig{
			Dir:        "logs",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Telemetry: TelemetryConfig{
			EventBufferSize:     50,
			HeartbeatInterval:   15 * time.Second,
			OrientationInterval: 200 * time.Millisecond,
		},
		MQTT: MQTTConfig{
			Topic:    "wifidrone/telemetry",
			ClientID: "wifidrone",
		},
		MAVLink: MAVLinkConfig{
			SystemID: 1,
		},
		LED: LEDConfig{
			Pin: 17,
		},
	}
}

// Driver names accepted for motors and sensor.
const (
	DriverPCA9685 = "pca9685"
	DriverMPU6050 = "mpu6050"
	DriverSim     = "sim"
)
