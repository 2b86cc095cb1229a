package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sethvargo/go-retry"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// RegistrationService admits and cancels registrations. Every change to a
// course's seat count goes through its CapacityLedger.
type RegistrationService struct {
	courses       domain.CourseRepository
	registrations domain.RegistrationRepository
	ledger        *CapacityLedger
	publisher     domain.EventPublisher
	validator     domain.TransitionValidator
	opts          options
}

// NewRegistrationService creates a service with the given adapters.
func NewRegistrationService(
	courses domain.CourseRepository,
	registrations domain.RegistrationRepository,
	ledger *CapacityLedger,
	publisher domain.EventPublisher,
	validator domain.TransitionValidator,
	opts ...Option,
) *RegistrationService {
	return &RegistrationService{
		courses:       courses,
		registrations: registrations,
		ledger:        ledger,
		publisher:     publisher,
		validator:     validator,
		opts:          newOptions(opts),
	}
}

// RegistrationRequest is a submission from the public form.
type RegistrationRequest struct {
	CourseID string
	domain.Registrant
}

func (r RegistrationRequest) normalize() RegistrationRequest {
	r.CourseID = strings.TrimSpace(r.CourseID)
	r.IDCard = strings.TrimSpace(r.IDCard)
	return r
}

// Register admits one person to a course. The checks and both writes happen
// while holding the course's slot, so concurrent submissions are decided one
// at a time against the count left by the previous one.
func (s *RegistrationService) Register(ctx context.Context, req RegistrationRequest) (domain.Registration, error) {
	req = req.normalize()
	if req.CourseID == "" {
		return domain.Registration{}, domain.ErrCourseNotFound
	}
	if req.IDCard == "" {
		return domain.Registration{}, &domain.ValidationError{Field: "idCard", Reason: "must not be empty"}
	}

	var reg domain.Registration
	err := s.ledger.Run(ctx, req.CourseID, func(ctx context.Context, slot *Slot) error {
		course, err := s.courses.GetByID(ctx, req.CourseID)
		if err != nil {
			return storageErr("loading course", err)
		}

		now := s.opts.today()
		if err := course.CheckAdmission(now, s.opts.loc); err != nil {
			return err
		}

		confirmed := domain.RegistrationConfirmed
		existing, err := s.registrations.List(ctx, domain.RegistrationFilter{
			CourseID: course.ID,
			IDCard:   req.IDCard,
			Status:   &confirmed,
		})
		if err != nil {
			return storageErr("checking duplicate registration", err)
		}
		if len(existing) > 0 {
			return domain.ErrDuplicateRegistration
		}

		id, err := generateID("R")
		if err != nil {
			return fmt.Errorf("generating registration id: %w", err)
		}
		reg = domain.NewRegistration(id, course, req.Registrant, now)

		if err := s.registrations.Create(ctx, reg); err != nil {
			return storageErr("saving registration", err)
		}

		if err := s.retryOnce(ctx, func(ctx context.Context) error {
			_, err := slot.Increment(ctx)
			return err
		}); err != nil {
			return &domain.StorageInconsistencyError{
				Op:             "register",
				RegistrationID: reg.ID,
				CourseID:       course.ID,
				Err:            err,
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "registration rejected", err, "course_id", req.CourseID)
		return domain.Registration{}, err
	}

	slog.InfoContext(ctx, "registration confirmed",
		"registration_id", reg.ID,
		"course_id", reg.CourseID,
	)
	s.publish(ctx, domain.EventConfirm, reg)
	return reg, nil
}

// Cancel releases a registration's seat. Cancelling an already cancelled
// registration returns it unchanged.
func (s *RegistrationService) Cancel(ctx context.Context, id string) (domain.Registration, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return domain.Registration{}, storageErr("loading registration", err)
	}
	if reg.Status == domain.RegistrationCancelled {
		return reg, nil
	}

	changed := false
	err = s.ledger.Run(ctx, reg.CourseID, func(ctx context.Context, slot *Slot) error {
		// Re-read under the slot: a concurrent cancel may have won.
		current, err := s.registrations.GetByID(ctx, id)
		if err != nil {
			return storageErr("loading registration", err)
		}
		reg = current
		if current.Status == domain.RegistrationCancelled {
			return nil
		}

		next, err := s.validator.Apply(ctx, current.Status, domain.EventCancel)
		if err != nil {
			return err
		}
		if err := s.registrations.UpdateStatus(ctx, id, next); err != nil {
			return storageErr("updating registration status", err)
		}
		reg.Status = next
		changed = true

		if !current.Active() {
			return nil
		}
		if err := s.retryOnce(ctx, func(ctx context.Context) error {
			_, err := slot.Decrement(ctx)
			return err
		}); err != nil {
			return &domain.StorageInconsistencyError{
				Op:             "cancel",
				RegistrationID: id,
				CourseID:       current.CourseID,
				Err:            err,
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "cancellation failed", err, "registration_id", id)
		return domain.Registration{}, err
	}

	if changed {
		slog.InfoContext(ctx, "registration cancelled",
			"registration_id", reg.ID,
			"course_id", reg.CourseID,
		)
		s.publish(ctx, domain.EventCancel, reg)
	}
	return reg, nil
}

// GetByID returns a registration by its identifier.
func (s *RegistrationService) GetByID(ctx context.Context, id string) (domain.Registration, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return domain.Registration{}, storageErr("loading registration", err)
	}
	return reg, nil
}

// List returns registrations matching the filter.
func (s *RegistrationService) List(ctx context.Context, filter domain.RegistrationFilter) ([]domain.Registration, error) {
	regs, err := s.registrations.List(ctx, filter)
	if err != nil {
		return nil, storageErr("listing registrations", err)
	}
	return regs, nil
}

// ListForCourse returns a course's registrations narrowed by search, failing
// if the course does not exist. An empty search returns the whole roster.
func (s *RegistrationService) ListForCourse(ctx context.Context, courseID, search string) (domain.Course, []domain.Registration, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return domain.Course{}, nil, storageErr("loading course", err)
	}
	regs, err := s.List(ctx, domain.RegistrationFilter{CourseID: courseID})
	if err != nil {
		return domain.Course{}, nil, err
	}
	return course, SearchRoster(regs, search), nil
}

// SearchRoster keeps the registrations whose first name, last name, email or
// organization contains search, ignoring case. Order is preserved.
func SearchRoster(regs []domain.Registration, search string) []domain.Registration {
	if search == "" {
		return regs
	}
	term := strings.ToLower(search)
	matched := make([]domain.Registration, 0, len(regs))
	for _, r := range regs {
		for _, field := range []string{r.FirstName, r.LastName, r.Email, r.Organization} {
			if strings.Contains(strings.ToLower(field), term) {
				matched = append(matched, r)
				break
			}
		}
	}
	return matched
}

// Reconcile rewrites a course's count from its confirmed registrations.
func (s *RegistrationService) Reconcile(ctx context.Context, courseID string) (Reconciliation, error) {
	rec, err := s.ledger.Reconcile(ctx, courseID)
	if err != nil {
		return Reconciliation{}, err
	}
	if rec.Drifted() {
		slog.WarnContext(ctx, "participant count reconciled",
			"course_id", rec.CourseID,
			"recorded", rec.Recorded,
			"expected", rec.Expected,
		)
	}
	return rec, nil
}

// Audit reports courses whose count disagrees with their registrations.
func (s *RegistrationService) Audit(ctx context.Context) ([]Reconciliation, error) {
	return s.ledger.Audit(ctx)
}

// retryOnce runs the second step of a commit, retrying a single time.
func (s *RegistrationService) retryOnce(ctx context.Context, step func(context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(s.opts.retryDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := step(ctx); err != nil {
			slog.WarnContext(ctx, "second commit step failed", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// publish emits an event after the commit. A failure is logged and does not
// undo the committed change.
func (s *RegistrationService) publish(ctx context.Context, event domain.Event, reg domain.Registration) {
	if err := s.publisher.Publish(ctx, event, reg); err != nil {
		slog.ErrorContext(ctx, "publishing registration event",
			"event", event,
			"registration_id", reg.ID,
			"error", err,
		)
	}
}

func (s *RegistrationService) logFailure(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err)
	switch {
	case errors.Is(err, domain.ErrStorageInconsistency):
		slog.ErrorContext(ctx, "storage inconsistency, reconcile required", args...)
	case errors.Is(err, domain.ErrStorageUnavailable):
		slog.ErrorContext(ctx, msg, args...)
	default:
		slog.InfoContext(ctx, msg, args...)
	}
}
