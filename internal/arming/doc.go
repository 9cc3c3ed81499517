// Package arming holds the armed/disarmed state and the command-silence failsafe.
//
// The machine is not safe for concurrent use; the owner serializes access.
package arming
