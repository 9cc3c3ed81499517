// Package mixer converts pilot stick input into four rotor drive levels.
//
// The mixer is a pure function of the previous command, the pilot input and
// the armed flag. It holds no state and performs no I/O.
package mixer
