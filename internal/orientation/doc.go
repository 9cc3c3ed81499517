// Package orientation reads vehicle attitude from an inertial sensor.
//
// A Source is polled once per control tick and returns the latest pitch, roll
// and yaw in degrees. Sources keep no history; each Update overwrites the
// previous snapshot.
//
// Sources:
//   - MPU6050: I2C IMU with startup bias calibration and a complementary filter
//   - Sim: sine-wave attitude for workstation runs
//   - Static: fixed attitude for tests
package orientation
