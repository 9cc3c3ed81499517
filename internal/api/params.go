//
//
package api

import (
	"net/url"

	"github.com/Moha1423/WIFI-drone/internal/command"
	"github.com/Moha1423/WIFI-drone/internal/mixer"
)

// parseControlRequest reads throttle, pitch, roll, yaw and arm. A parameter
// that is present with an unparseable value counts as 0.
func parseControlRequest(form url.Values) command.ControlRequest {
	var req command.ControlRequest
	req.Input = mixer.PilotInput{
		Throttle: intParam(form, "throttle"),
		Pitch:    intParam(form, "pitch"),
		Roll:     intParam(form, "roll"),
		Yaw:      intParam(form, "yaw"),
	}
	if _, ok := form["arm"]; ok {
		arm := form.Get("arm")
		req.Arm = &arm
	}
	return req
}

func intParam(form url.Values, key string) *int {
	if _, ok := form[key]; !ok {
		return nil
	}
	v := leadingInt(form.Get(key))
	return &v
}

// leadingInt parses an optional sign and the digits that follow, after
// leading blanks. Anything else ends the number; no digits gives 0.
func leadingInt(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}

	neg := false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}

	const limit = 1 << 20
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n < limit {
			n = n*10 + int(s[i]-'0')
		}
	}

	if neg {
		return -n
	}
	return n
}
