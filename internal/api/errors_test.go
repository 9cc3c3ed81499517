package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"telemetry off", ErrUnavailableError, http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"method", methodNotAllowed("GET"), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"not found", ErrNotFoundError, http.StatusNotFound, "NOT_FOUND"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ToAPIError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}

			var resp Response
			if err := json.Unmarshal(body, &resp); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if resp.Result != "error" || resp.Code != tt.wantCode || resp.CorrelationID == "" {
				t.Errorf("response = %+v", resp)
			}
		})
	}

	if status, body := ToAPIError(nil); status != http.StatusOK || body != nil {
		t.Errorf("ToAPIError(nil) = %d, %s", status, body)
	}
}
