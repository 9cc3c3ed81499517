//
//
package api

import (
	"net/http"
	"time"

	"github.com/Moha1423/WIFI-drone/internal/auth"
)

// RegisterRoutes registers the pilot routes and the /api/v1 endpoints.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	apiV1 := "/api/v1"

	// Health endpoint (no auth required)
	mux.HandleFunc(auth.HealthPath, s.handleHealth)

	mux.HandleFunc("/control", s.protect(s.handleControl, auth.ScopeControl))
	mux.HandleFunc("/sensor", s.protect(s.handleSensor, auth.ScopeTelemetry))
	mux.HandleFunc(apiV1+"/telemetry", s.protect(s.handleTelemetry, auth.ScopeTelemetry))
	mux.HandleFunc(apiV1+"/ws", s.protect(s.handleWebSocket, auth.ScopeTelemetry))

	mux.HandleFunc("/", s.handleAssets)
}

func (s *Server) protect(h http.HandlerFunc, scopes ...string) http.HandlerFunc {
	if s.authMiddleware == nil {
		return h
	}
	return s.authMiddleware.Protect(h, scopes...)
}

// handleControl handles GET|POST /control. Input is never rejected: bad
// values parse as 0 and the mixer clamps the rest.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		WriteAPIError(w, methodNotAllowed("GET or POST"))
		return
	}

	// ParseForm failures leave whatever was parsed; the request still counts
	// as link activity.
	_ = r.ParseForm()

	req := parseControlRequest(r.Form)
	if claims := auth.GetClaimsFromRequest(r); claims != nil {
		req.Subject = claims.Subject
	}

	writeJSON(w, s.flight.HandleControl(r.Context(), req))
}

// handleSensor handles GET /sensor. It does not count as link activity.
func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteAPIError(w, methodNotAllowed("GET"))
		return
	}

	snap := s.flight.Orientation()
	writeJSON(w, map[string]float64{
		"pitch": snap.Pitch,
		"roll":  snap.Roll,
		"yaw":   snap.Yaw,
	})
}

// handleTelemetry handles GET /api/v1/telemetry (SSE)
func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteAPIError(w, methodNotAllowed("GET"))
		return
	}

	if s.telemetryHub == nil {
		WriteAPIError(w, ErrUnavailableError)
		return
	}

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	if err := s.telemetryHub.Subscribe(r.Context(), w, r); err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL",
			"Failed to subscribe to telemetry stream", nil)
		return
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.wsStream == nil {
		WriteAPIError(w, ErrUnavailableError)
		return
	}
	s.wsStream.ServeHTTP(w, r)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		WriteAPIError(w, ErrNotFoundError)
		return
	}
	s.assets.ServeHTTP(w, r)
}

// handleHealth handles GET /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteAPIError(w, methodNotAllowed("GET"))
		return
	}

	h := s.flight.Health()
	subsystems := map[string]bool{
		"sensor":    h.SensorOK,
		"actuator":  h.ActuatorOK,
		"telemetry": s.telemetryHub != nil,
		"assets":    s.assets != nil,
	}

	overallStatus := "ok"
	if !h.SensorOK || !h.ActuatorOK {
		overallStatus = "degraded"
	}

	health := map[string]interface{}{
		"status":           overallStatus,
		"uptimeSec":        time.Since(s.startTime).Seconds(),
		"armed":            h.Armed,
		"subsystems":       subsystems,
		"lastCommandAgeMs": h.LastCommandAge.Milliseconds(),
		"lastSampleAgeMs":  h.LastSampleAge.Milliseconds(),
	}
	if h.SensorError != "" {
		health["sensorError"] = h.SensorError
	}
	if h.ActuatorError != "" {
		health["actuatorError"] = h.ActuatorError
	}

	if overallStatus == "ok" {
		WriteSuccess(w, health)
		return
	}
	WriteError(w, http.StatusServiceUnavailable, "SERVICE_DEGRADED",
		"One or more subsystems are unavailable", health)
}
