package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// TracingPublisher wraps a domain.EventPublisher with OpenTelemetry tracing
// and counts published events by type.
type TracingPublisher struct {
	next      domain.EventPublisher
	tracer    trace.Tracer
	published metric.Int64Counter
}

// Compile-time check: TracingPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.EventPublisher) *TracingPublisher {
	// A failed instrument falls back to a no-op counter.
	counter, _ := otel.Meter(tracerName).Int64Counter("coursereg.registration.events",
		metric.WithDescription("Registration events handed to the queue."),
	)
	return &TracingPublisher{
		next:      next,
		tracer:    otel.Tracer(tracerName),
		published: counter,
	}
}

func (p *TracingPublisher) Publish(ctx context.Context, event domain.Event, reg domain.Registration) (err error) {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.Publish",
		trace.WithAttributes(
			attribute.String("event.type", string(event)),
			attribute.String("registration.id", reg.ID),
			attribute.String("course.id", reg.CourseID),
		),
	)
	defer func() { end(span, err) }()

	if err := p.next.Publish(ctx, event, reg); err != nil {
		return err
	}
	p.published.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", string(event))))
	return nil
}
