//
//
package orientation

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/all"

	"github.com/Moha1423/WIFI-drone/internal/config"
)

// MPU-6050 registers.
const (
	regSampleRateDiv = 0x19
	regConfig        = 0x1A
	regGyroConfig    = 0x1B
	regAccelConfig   = 0x1C
	regAccelXOutH    = 0x3B
	regPowerMgmt1    = 0x6B
	regWhoAmI        = 0x75
)

const (
	// ±2 g and ±500 °/s full scale.
	accelLSBPerG   = 16384.0
	gyroLSBPerDPS  = 65.5
	gyroConfig500  = 0x08
	accelConfig2G  = 0x00
	clockPLLGyroX  = 0x01
	filterGyroCoef = 0.98
	radToDeg       = 180 / math.Pi
)

// Device identities answered by the MPU-6050 family and common clones.
var knownWhoAmI = map[byte]string{
	0x68: "MPU-6050",
	0x70: "MPU-6500",
	0x71: "MPU-9250",
	0x72: "MPU-6555",
	0x73: "MPU-9255",
	0x98: "MPU-6050 clone",
}

// Bus is the subset of an I2C bus used by the sensor.
type Bus interface {
	ReadByteFromReg(addr, reg byte) (byte, error)
	ReadFromReg(addr, reg byte, value []byte) error
	WriteByteToReg(addr, reg, value byte) error
}

type axes struct {
	x, y, z float64
}

// MPU6050 is an orientation source backed by an MPU-6050 IMU.
type MPU6050 struct {
	bus  Bus
	addr byte
	now  func() time.Time

	mu         sync.Mutex
	accOffset  axes
	gyroOffset axes
	angleX     float64
	angleY     float64
	angleZ     float64
	last       time.Time
}

var _ Source = (*MPU6050)(nil)

// NewMPU6050 creates a sensor on bus. Call Begin and Calibrate before Update.
func NewMPU6050(bus Bus, addr byte) *MPU6050 {
	return &MPU6050{bus: bus, addr: addr, now: time.Now}
}

// SetClock replaces the time source used for gyro integration.
func (m *MPU6050) SetClock(now func() time.Time) {
	m.now = now
}

// OpenMPU6050 opens the I2C bus and brings the sensor up: it retries Begin
// every cfg.RetryInterval until the device answers, waits cfg.SettleDelay and
// calibrates. It blocks until done or ctx is cancelled.
func OpenMPU6050(ctx context.Context, cfg config.SensorConfig) (*MPU6050, error) {
	if err := embd.InitI2C(); err != nil {
		return nil, fmt.Errorf("%w: i2c init: %v", ErrUnavailable, err)
	}

	m := NewMPU6050(embd.NewI2CBus(byte(cfg.I2CBus)), byte(cfg.Address))

	if err := RetryUntil(ctx, "mpu6050 begin", cfg.RetryInterval, m.Begin); err != nil {
		return nil, err
	}
	log.Printf("orientation: mpu6050 found at %#x", cfg.Address)

	// Keep the airframe still while offsets are measured.
	log.Printf("orientation: calculating offsets, do not move the vehicle")
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(cfg.SettleDelay):
	}

	if err := RetryUntil(ctx, "mpu6050 calibration", cfg.RetryInterval, func() error {
		return m.Calibrate(cfg.CalibrationSamples)
	}); err != nil {
		return nil, err
	}
	log.Printf("orientation: calibration done")

	return m, nil
}

// Begin checks the device identity and configures the sensor.
func (m *MPU6050) Begin() error {
	who, err := m.bus.ReadByteFromReg(m.addr, regWhoAmI)
	if err != nil {
		return fmt.Errorf("%w: who_am_i: %v", ErrUnavailable, err)
	}
	if _, ok := knownWhoAmI[who]; !ok {
		return fmt.Errorf("%w: unexpected who_am_i %#x", ErrNotFound, who)
	}

	setup := []struct {
		reg, val byte
	}{
		{regPowerMgmt1, clockPLLGyroX},
		{regSampleRateDiv, 0x00},
		{regConfig, 0x00},
		{regGyroConfig, gyroConfig500},
		{regAccelConfig, accelConfig2G},
	}
	for _, w := range setup {
		if err := m.bus.WriteByteToReg(m.addr, w.reg, w.val); err != nil {
			return fmt.Errorf("%w: write %#x: %v", ErrUnavailable, w.reg, err)
		}
	}

	m.mu.Lock()
	m.angleX, m.angleY, m.angleZ = 0, 0, 0
	m.last = time.Time{}
	m.mu.Unlock()
	return nil
}

// Calibrate averages samples readings with the vehicle at rest and stores
// them as accelerometer and gyro bias. Gravity is assumed along +Z.
func (m *MPU6050) Calibrate(samples int) error {
	if samples < 1 {
		samples = 1
	}

	var accSum, gyroSum axes
	for i := 0; i < samples; i++ {
		acc, gyro, err := m.readRaw()
		if err != nil {
			return err
		}
		accSum.x += acc.x
		accSum.y += acc.y
		accSum.z += acc.z
		gyroSum.x += gyro.x
		gyroSum.y += gyro.y
		gyroSum.z += gyro.z
	}

	n := float64(samples)
	m.mu.Lock()
	m.accOffset = axes{accSum.x / n, accSum.y / n, accSum.z/n - 1}
	m.gyroOffset = axes{gyroSum.x / n, gyroSum.y / n, gyroSum.z / n}
	m.mu.Unlock()
	return nil
}

// Update reads one sample and advances the complementary filter.
func (m *MPU6050) Update(ctx context.Context) (Snapshot, error) {
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	default:
	}

	acc, gyro, err := m.readRaw()
	if err != nil {
		return Snapshot{}, err
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	acc = axes{acc.x - m.accOffset.x, acc.y - m.accOffset.y, acc.z - m.accOffset.z}
	gyro = axes{gyro.x - m.gyroOffset.x, gyro.y - m.gyroOffset.y, gyro.z - m.gyroOffset.z}

	sgZ := 1.0
	if acc.z < 0 {
		sgZ = -1
	}
	accAngleX := math.Atan2(acc.y, sgZ*math.Sqrt(acc.z*acc.z+acc.x*acc.x)) * radToDeg
	accAngleY := -math.Atan2(acc.x, math.Sqrt(acc.z*acc.z+acc.y*acc.y)) * radToDeg

	var dt float64
	if !m.last.IsZero() {
		dt = now.Sub(m.last).Seconds()
	}
	m.last = now

	m.angleX = wrap(filterGyroCoef*(accAngleX+wrap(m.angleX+gyro.x*dt-accAngleX))+(1-filterGyroCoef)*accAngleX)
	m.angleY = wrap(filterGyroCoef*(accAngleY+wrap(m.angleY+sgZ*gyro.y*dt-accAngleY))+(1-filterGyroCoef)*accAngleY)
	m.angleZ += gyro.z * dt

	return Snapshot{Pitch: m.angleX, Roll: m.angleY, Yaw: m.angleZ, At: now}, nil
}

// readRaw returns acceleration in g and rotation in °/s, before bias removal.
func (m *MPU6050) readRaw() (acc, gyro axes, err error) {
	buf := make([]byte, 14)
	if err := m.bus.ReadFromReg(m.addr, regAccelXOutH, buf); err != nil {
		return axes{}, axes{}, fmt.Errorf("%w: read sample: %v", ErrUnavailable, err)
	}

	word := func(i int) float64 {
		return float64(int16(binary.BigEndian.Uint16(buf[i:])))
	}

	// Bytes 6..7 hold temperature.
	acc = axes{word(0) / accelLSBPerG, word(2) / accelLSBPerG, word(4) / accelLSBPerG}
	gyro = axes{word(8) / gyroLSBPerDPS, word(10) / gyroLSBPerDPS, word(12) / gyroLSBPerDPS}
	return acc, gyro, nil
}

// wrap folds an angle into (-180, 180].
func wrap(angle float64) float64 {
	for angle > 180 {
		angle -= 360
	}
	for angle <= -180 {
		angle += 360
	}
	return angle
}
