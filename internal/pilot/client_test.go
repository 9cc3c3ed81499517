package pilot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Moha1423/WIFI-drone/internal/actuator/fake"
	"github.com/Moha1423/WIFI-drone/internal/api"
	"github.com/Moha1423/WIFI-drone/internal/command"
	"github.com/Moha1423/WIFI-drone/internal/config"
	"github.com/Moha1423/WIFI-drone/internal/orientation"
)

// newFlightServer runs the real HTTP surface over a simulated vehicle.
func newFlightServer(t *testing.T) (*httptest.Server, *command.Orchestrator) {
	t.Helper()
	cfg := config.Baseline()

	orch := command.NewOrchestrator(fake.NewRecorder(), orientation.NewStatic(3, -4, 12), cfg.Flight)
	if err := orch.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	orch.Tick(context.Background())

	srv := httptest.NewServer(api.NewServer(orch, nil, cfg.Server).Handler())
	t.Cleanup(srv.Close)
	return srv, orch
}

func TestClient_Control(t *testing.T) {
	srv, orch := newFlightServer(t)
	client := NewClient(srv.URL+"/", "", time.Second)
	ctx := context.Background()

	st, err := client.Control(ctx, Sticks{Armed: true, Throttle: 50})
	if err != nil {
		t.Fatalf("Control() failed: %v", err)
	}
	if !st.Armed || st.MotorFL != 127 || st.MotorBR != 127 {
		t.Errorf("status = %+v, want armed at 127", st)
	}
	if st.Yaw != 12 {
		t.Errorf("yaw = %v, want 12", st.Yaw)
	}

	if _, err := client.Control(ctx, Sticks{}); err != nil {
		t.Fatalf("Control() failed: %v", err)
	}
	if orch.Status().Armed {
		t.Error("vehicle still armed after arm=0")
	}
}

func TestClient_Sensor(t *testing.T) {
	srv, _ := newFlightServer(t)
	client := NewClient(srv.URL, "", time.Second)

	a, err := client.Sensor(context.Background())
	if err != nil {
		t.Fatalf("Sensor() failed: %v", err)
	}
	if a.Pitch != 3 || a.Roll != -4 || a.Yaw != 12 {
		t.Errorf("attitude = %+v", a)
	}
}

func TestClient_TokenAndStatus(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", time.Second)
	_, err := client.Sensor(context.Background())

	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("err = %v, want ErrUnexpectedStatus", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}
