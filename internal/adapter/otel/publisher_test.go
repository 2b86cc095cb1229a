package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	adapter "github.com/neomorfeo/coursereg/internal/adapter/otel"
	"github.com/neomorfeo/coursereg/internal/domain"
)

type stubPublisher struct {
	err   error
	calls int
}

func (s *stubPublisher) Publish(context.Context, domain.Event, domain.Registration) error {
	s.calls++
	return s.err
}

func setupTestMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader
}

// eventCounts sums the registration event counter per event type.
func eventCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}
	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "coursereg.registration.events" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric data is %T, want Sum[int64]", m.Data)
			}
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value("event.type")
				counts[v.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestTracingPublisher_CountsDeliveredEvents(t *testing.T) {
	spans := setupTestTracer(t)
	reader := setupTestMeter(t)
	inner := &stubPublisher{}
	pub := adapter.NewTracingPublisher(inner)
	ctx := context.Background()

	reg := domain.Registration{
		ID:         "R1",
		CourseID:   "C1",
		Registrant: domain.Registrant{IDCard: "1100700000001"},
	}
	for _, event := range []domain.Event{domain.EventConfirm, domain.EventConfirm, domain.EventCancel} {
		if err := pub.Publish(ctx, event, reg); err != nil {
			t.Fatalf("Publish(%s): %v", event, err)
		}
	}

	if inner.calls != 3 {
		t.Errorf("inner publisher called %d times, want 3", inner.calls)
	}
	got := eventCounts(t, reader)
	if got["confirm"] != 2 || got["cancel"] != 1 {
		t.Errorf("event counts = %v, want confirm=2 cancel=1", got)
	}

	recorded := spans.GetSpans()
	if len(recorded) != 3 {
		t.Fatalf("got %d spans, want 3", len(recorded))
	}
	assertAttribute(t, recorded[2], "event.type", "cancel")
	assertAttribute(t, recorded[2], "course.id", "C1")
	for _, attr := range recorded[0].Attributes {
		if attr.Value.Emit() == reg.IDCard {
			t.Errorf("span attribute %q carries the id card", attr.Key)
		}
	}
}

func TestTracingPublisher_FailureNotCounted(t *testing.T) {
	spans := setupTestTracer(t)
	reader := setupTestMeter(t)
	boom := errors.New("queue unavailable")
	pub := adapter.NewTracingPublisher(&stubPublisher{err: boom})

	err := pub.Publish(context.Background(), domain.EventCancel, domain.Registration{ID: "R9"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	if got := eventCounts(t, reader); len(got) != 0 {
		t.Errorf("event counts = %v, want none", got)
	}
	recorded := spans.GetSpans()
	if len(recorded) != 1 || recorded[0].Status.Code != codes.Error {
		t.Fatalf("want one errored span, got %+v", recorded)
	}
	assertAttribute(t, recorded[0], "registration.id", "R9")
}
