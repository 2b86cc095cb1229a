package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/coursereg/internal/domain"
)

const tracerName = "github.com/neomorfeo/coursereg/internal/adapter/otel"

// end records err on the span, if any, and ends it.
func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TracingCourseRepository wraps a domain.CourseRepository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingCourseRepository struct {
	next   domain.CourseRepository
	tracer trace.Tracer
}

// Compile-time check: TracingCourseRepository implements domain.CourseRepository.
var _ domain.CourseRepository = (*TracingCourseRepository)(nil)

// NewTracingCourseRepository creates a tracing decorator around the given repository.
func NewTracingCourseRepository(next domain.CourseRepository) *TracingCourseRepository {
	return &TracingCourseRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingCourseRepository) Create(ctx context.Context, c domain.Course) (err error) {
	ctx, span := r.tracer.Start(ctx, "CourseRepository.Create",
		trace.WithAttributes(
			attribute.String("course.id", c.ID),
			attribute.Int("course.max_participants", c.MaxParticipants),
		),
	)
	defer func() { end(span, err) }()

	return r.next.Create(ctx, c)
}

func (r *TracingCourseRepository) GetByID(ctx context.Context, id string) (c domain.Course, err error) {
	ctx, span := r.tracer.Start(ctx, "CourseRepository.GetByID",
		trace.WithAttributes(attribute.String("course.id", id)),
	)
	defer func() { end(span, err) }()

	return r.next.GetByID(ctx, id)
}

func (r *TracingCourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	ctx, span := r.tracer.Start(ctx, "CourseRepository.List")

	courses, err := r.next.List(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(courses)))
	}
	end(span, err)
	return courses, err
}

func (r *TracingCourseRepository) Update(ctx context.Context, c domain.Course) (err error) {
	ctx, span := r.tracer.Start(ctx, "CourseRepository.Update",
		trace.WithAttributes(
			attribute.String("course.id", c.ID),
			attribute.Int("course.max_participants", c.MaxParticipants),
		),
	)
	defer func() { end(span, err) }()

	return r.next.Update(ctx, c)
}

func (r *TracingCourseRepository) UpdateParticipants(ctx context.Context, id string, count int) (err error) {
	ctx, span := r.tracer.Start(ctx, "CourseRepository.UpdateParticipants",
		trace.WithAttributes(
			attribute.String("course.id", id),
			attribute.Int("course.current_participants", count),
		),
	)
	defer func() { end(span, err) }()

	return r.next.UpdateParticipants(ctx, id, count)
}

func (r *TracingCourseRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := r.tracer.Start(ctx, "CourseRepository.Delete",
		trace.WithAttributes(attribute.String("course.id", id)),
	)
	defer func() { end(span, err) }()

	return r.next.Delete(ctx, id)
}

// TracingRegistrationRepository wraps a domain.RegistrationRepository with
// OpenTelemetry tracing. Personal fields never become span attributes.
type TracingRegistrationRepository struct {
	next   domain.RegistrationRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRegistrationRepository implements domain.RegistrationRepository.
var _ domain.RegistrationRepository = (*TracingRegistrationRepository)(nil)

// NewTracingRegistrationRepository creates a tracing decorator around the given repository.
func NewTracingRegistrationRepository(next domain.RegistrationRepository) *TracingRegistrationRepository {
	return &TracingRegistrationRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRegistrationRepository) Create(ctx context.Context, reg domain.Registration) (err error) {
	ctx, span := r.tracer.Start(ctx, "RegistrationRepository.Create",
		trace.WithAttributes(
			attribute.String("registration.id", reg.ID),
			attribute.String("course.id", reg.CourseID),
		),
	)
	defer func() { end(span, err) }()

	return r.next.Create(ctx, reg)
}

func (r *TracingRegistrationRepository) GetByID(ctx context.Context, id string) (reg domain.Registration, err error) {
	ctx, span := r.tracer.Start(ctx, "RegistrationRepository.GetByID",
		trace.WithAttributes(attribute.String("registration.id", id)),
	)
	defer func() { end(span, err) }()

	return r.next.GetByID(ctx, id)
}

func (r *TracingRegistrationRepository) List(ctx context.Context, filter domain.RegistrationFilter) ([]domain.Registration, error) {
	ctx, span := r.tracer.Start(ctx, "RegistrationRepository.List")

	if filter.CourseID != "" {
		span.SetAttributes(attribute.String("filter.course_id", filter.CourseID))
	}
	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	regs, err := r.next.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(regs)))
	}
	end(span, err)
	return regs, err
}

func (r *TracingRegistrationRepository) UpdateStatus(ctx context.Context, id string, status domain.RegistrationStatus) (err error) {
	ctx, span := r.tracer.Start(ctx, "RegistrationRepository.UpdateStatus",
		trace.WithAttributes(
			attribute.String("registration.id", id),
			attribute.String("registration.status", string(status)),
		),
	)
	defer func() { end(span, err) }()

	return r.next.UpdateStatus(ctx, id, status)
}
