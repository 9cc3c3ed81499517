// Package actuator drives the four rotor channels.
//
// Output is the southbound port used by the command orchestrator. Each Write
// sets all four channels from one MotorCommand. Values outside [0,255] are
// rejected with ErrInvalidRange; callers clamp before writing.
//
// Backends:
//   - PCA9685: 16-channel I2C PWM controller, one channel per rotor
//   - fake.Recorder: in-memory recorder for tests and simulation
package actuator
