package telemetry

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"
)

func BenchmarkPublishWithSubscribers(b *testing.B) {
	for _, count := range []int{0, 1, 5} {
		b.Run(fmt.Sprintf("Subscribers_%d", count), func(b *testing.B) {
			hub := NewHub(testConfig())
			defer hub.Stop()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			for i := 0; i < count; i++ {
				req := httptest.NewRequest("GET", "/api/v1/telemetry", nil)
				w := newThreadSafeResponseWriter()
				go func() { _ = hub.Subscribe(ctx, w, req) }()
			}
			for hub.ClientCount() < count {
				time.Sleep(time.Millisecond)
			}

			event := NewEvent(EventMotors, map[string]interface{}{"motorFL": 127})
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				event.ID = 0
				if err := hub.Publish(event); err != nil {
					b.Fatalf("Publish failed: %v", err)
				}
			}
		})
	}
}

func BenchmarkEventBuffer(b *testing.B) {
	buf := NewEventBuffer(50)
	for i := 0; i < b.N; i++ {
		buf.AddEvent(Event{ID: int64(i + 1), Type: EventOrientation})
	}
}
