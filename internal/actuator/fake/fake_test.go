package fake

import (
	"context"
	"errors"
	"testing"

	"github.com/Moha1423/WIFI-drone/internal/actuator"
	"github.com/Moha1423/WIFI-drone/internal/actuator/actuatortest"
	"github.com/Moha1423/WIFI-drone/internal/mixer"
)

func TestRecorder_Conformance(t *testing.T) {
	actuatortest.RunConformance(t, "fake", func() (actuator.Output, actuatortest.Readback) {
		r := NewRecorder()
		return r, r.Last
	})
}

func TestRecorder_RecordsInOrder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	first := mixer.MotorCommand{FL: 1, FR: 2, BL: 3, BR: 4}
	second := mixer.MotorCommand{FL: 5, FR: 6, BL: 7, BR: 8}
	_ = r.Write(ctx, first)
	_ = r.Write(ctx, second)

	got := r.Writes()
	if len(got) != 2 || got[0] != first || got[1] != second {
		t.Errorf("Writes() = %+v, want [%+v %+v]", got, first, second)
	}
	if r.Last() != second {
		t.Errorf("Last() = %+v, want %+v", r.Last(), second)
	}
}

func TestRecorder_WriteErr(t *testing.T) {
	r := NewRecorder()
	boom := errors.New("bus fault")
	r.SetWriteErr(boom)

	if err := r.Write(context.Background(), mixer.Zero); !errors.Is(err, boom) {
		t.Errorf("Write() = %v, want injected error", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRecorder_Close(t *testing.T) {
	r := NewRecorder()
	_ = r.Write(context.Background(), mixer.MotorCommand{FL: 100, FR: 100, BL: 100, BR: 100})
	_ = r.Close()

	if r.Last() != mixer.Zero {
		t.Errorf("Last() after Close = %+v, want zero", r.Last())
	}
	if err := r.Write(context.Background(), mixer.Zero); !errors.Is(err, actuator.ErrUnavailable) {
		t.Errorf("Write() after Close = %v, want UNAVAILABLE", err)
	}
}

func TestBoundedRecorder(t *testing.T) {
	r := NewBoundedRecorder(3)
	for i := 1; i <= 5; i++ {
		_ = r.Write(context.Background(), mixer.MotorCommand{FL: i})
	}

	got := r.Writes()
	if len(got) != 3 || got[0].FL != 3 || got[2].FL != 5 {
		t.Errorf("Writes() = %+v, want FL 3..5", got)
	}
	if r.Count() != 5 {
		t.Errorf("Count() = %d, want 5", r.Count())
	}
}
