package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Moha1423/WIFI-drone/internal/pilot"
)

func TestPercent(t *testing.T) {
	tests := map[int]int{0: 0, 127: 50, 128: 50, 255: 100, 51: 20}
	for drive, want := range tests {
		if got := percent(drive); got != want {
			t.Errorf("percent(%d) = %d, want %d", drive, got, want)
		}
	}
}

func TestWrapYaw(t *testing.T) {
	tests := map[float64]float64{0: 0, 190: -170, -190: 170, 720: 0, 180: 180}
	for in, want := range tests {
		if got := wrapYaw(in); got != want {
			t.Errorf("wrapYaw(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestKeysMoveSticks(t *testing.T) {
	ctrl := pilot.NewController(pilot.NewClient("http://127.0.0.1:0", "", time.Second), pilot.Config{})
	var model tea.Model = initialModel(ctrl, "test")

	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("w")},
		{Type: tea.KeyRunes, Runes: []rune("w")},
		{Type: tea.KeyUp},
		{Type: tea.KeyRight},
		{Type: tea.KeyRunes, Runes: []rune("d")},
	}
	for _, k := range keys {
		model, _ = model.Update(k)
	}

	s := ctrl.Sticks()
	if s.Throttle != 2*throttleStep || s.Pitch != -axisStep || s.Roll != axisStep || s.Yaw != axisStep {
		t.Errorf("sticks = %+v", s)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if s := ctrl.Sticks(); s.Pitch != 0 || s.Roll != 0 || s.Yaw != 0 || s.Throttle != 2*throttleStep {
		t.Errorf("after center: %+v", s)
	}

	if _, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}
