// Package audit writes the flight audit log.
//
// Every arming transition, failsafe and actuator fault is appended as one JSON
// line with subject, action, outcome and timestamp. The file is size-rotated.
package audit
