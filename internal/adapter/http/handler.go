package http

import (
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/coursereg/internal/app"
	"github.com/neomorfeo/coursereg/internal/domain"
)

// Services groups the application services the API exposes.
type Services struct {
	Courses       *app.CourseService
	Registrations *app.RegistrationService
	Content       *app.ContentService
	Dashboard     *app.DashboardService
	// PageSize is the admin listing page size when the request names none.
	PageSize int
}

// Register adds all public and admin routes to the Huma API.
func Register(api huma.API, svc Services) {
	if svc.PageSize <= 0 {
		svc.PageSize = app.DefaultPageSize
	}
	registerCourses(api, svc)
	registerRegistrations(api, svc)
	registerContent(api, svc)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

// parseDate reads an optional calendar date. An empty string is the zero time.
func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: field, Reason: "must be a date in YYYY-MM-DD form"}
	}
	return t, nil
}

// toHumaError translates domain errors to Huma HTTP errors. Registration
// outcomes carry the message meant for the submitter.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrStorageInconsistency):
		return huma.Error500InternalServerError(domain.UserMessage(err))
	case errors.Is(err, domain.ErrCourseNotFound),
		errors.Is(err, domain.ErrRegistrationNotFound):
		return huma.Error404NotFound(domain.UserMessage(err))
	case errors.Is(err, domain.ErrFaqNotFound),
		errors.Is(err, domain.ErrAnnouncementNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, domain.ErrCourseFull),
		errors.Is(err, domain.ErrDuplicateRegistration):
		return huma.Error409Conflict(domain.UserMessage(err))
	case errors.Is(err, domain.ErrRegistrationClosed):
		return huma.Error422UnprocessableEntity(domain.UserMessage(err))
	case errors.Is(err, domain.ErrParticipantsReadOnly):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		return huma.Error503ServiceUnavailable(domain.UserMessage(err))
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return huma.Error422UnprocessableEntity(vErr.Error())
	}

	var capErr *domain.CapacityBelowOccupancyError
	if errors.As(err, &capErr) {
		return huma.Error422UnprocessableEntity(capErr.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	return huma.Error500InternalServerError(domain.UserMessage(err))
}
