package api

import (
	"net/url"
	"testing"
)

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"50", 50},
		{"-20", -20},
		{"+7", 7},
		{"  12", 12},
		{"30abc", 30},
		{"abc", 0},
		{"", 0},
		{"-", 0},
		{"1.9", 1},
	}

	for _, tt := range tests {
		if got := leadingInt(tt.in); got != tt.want {
			t.Errorf("leadingInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLeadingInt_Saturates(t *testing.T) {
	if got := leadingInt("99999999999999999999"); got <= 255 {
		t.Errorf("huge value parsed as %d, want a large positive number", got)
	}
}

func TestParseControlRequest(t *testing.T) {
	form := url.Values{
		"throttle": {"50"},
		"yaw":      {"junk"},
		"arm":      {"1"},
	}
	req := parseControlRequest(form)

	if req.Input.Throttle == nil || *req.Input.Throttle != 50 {
		t.Errorf("Throttle = %v, want 50", req.Input.Throttle)
	}
	if req.Input.Yaw == nil || *req.Input.Yaw != 0 {
		t.Errorf("Yaw = %v, want 0", req.Input.Yaw)
	}
	if req.Input.Pitch != nil || req.Input.Roll != nil {
		t.Error("absent pitch/roll must stay nil")
	}
	if req.Arm == nil || *req.Arm != "1" {
		t.Errorf("Arm = %v, want 1", req.Arm)
	}

	empty := parseControlRequest(url.Values{})
	if !empty.Input.Empty() || empty.Arm != nil {
		t.Errorf("empty form parsed as %+v", empty)
	}
}
