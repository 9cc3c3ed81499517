// Package command implements the flight orchestrator.
//
// The orchestrator owns the arming state and the last motor command. It
// serves control requests (arming transition, mix, actuator write) and runs
// the fixed-rate control loop (sensor poll, failsafe check). One mutex makes
// each of those updates atomic with respect to the other, and the sensor is
// always read outside it.
//
// Side effects of every transition flow out through the audit logger, the
// telemetry publisher and the status indicator.
package command
