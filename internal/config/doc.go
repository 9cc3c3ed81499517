// Package config implements the configuration store for the flight daemon.
//
// Configuration is layered: the flight baseline, then an optional YAML or TOML
// file, then WIFIDRONE_* environment overrides. The merged result is validated
// before any hardware is touched.
//
// The failsafe timeout and poll interval live here because every other
// component derives its timing from them.
package config
