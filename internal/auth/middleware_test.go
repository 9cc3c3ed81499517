package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubVerifier map[string]*Claims

func (s stubVerifier) VerifyToken(token string) (*Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, errors.New("token verification failed")
}

func newTestMiddleware() *Middleware {
	return NewMiddleware(stubVerifier{
		"pilot-token":    {Subject: "pilot", Scopes: []string{ScopeControl, ScopeTelemetry}},
		"observer-token": {Subject: "observer", Scopes: []string{ScopeTelemetry}},
	})
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromRequest(r)
	if claims != nil {
		w.Header().Set("X-Subject", claims.Subject)
	}
	w.WriteHeader(http.StatusOK)
}

func TestProtect(t *testing.T) {
	m := newTestMiddleware()
	handler := m.Protect(okHandler, ScopeControl)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"no header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"missing scope", "Bearer observer-token", http.StatusForbidden, "FORBIDDEN"},
		{"allowed", "Bearer pilot-token", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/control", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantCode == "" {
				if got := w.Header().Get("X-Subject"); got != "pilot" {
					t.Errorf("claims subject = %q, want pilot", got)
				}
				return
			}

			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["result"] != "error" || body["code"] != tt.wantCode {
				t.Errorf("body = %v", body)
			}
			if id, _ := body["correlationId"].(string); id == "" {
				t.Error("missing correlationId")
			}
		})
	}
}

func TestRequireAuth_HealthOpen(t *testing.T) {
	m := newTestMiddleware()
	req := httptest.NewRequest(http.MethodGet, HealthPath, nil)
	w := httptest.NewRecorder()

	m.RequireAuth(okHandler)(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}
}

func TestRequireScope_NoClaims(t *testing.T) {
	m := newTestMiddleware()
	w := httptest.NewRecorder()

	m.RequireScope(ScopeTelemetry)(okHandler)(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestClaimsHasScopes(t *testing.T) {
	c := &Claims{Scopes: []string{ScopeRead, ScopeTelemetry}}

	if !c.HasScopes() {
		t.Error("no scopes required should pass")
	}
	if !c.HasScopes(ScopeTelemetry) {
		t.Error("telemetry should pass")
	}
	if c.HasScopes(ScopeTelemetry, ScopeControl) {
		t.Error("control should fail")
	}

	var nilClaims *Claims
	if nilClaims.HasScopes() {
		t.Error("nil claims should fail")
	}
}
