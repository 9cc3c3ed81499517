// Package indicator drives the status LED: slow flash while disarmed, solid
// while armed, fast flash after a failsafe until the pilot arms or disarms.
package indicator
