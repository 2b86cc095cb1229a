package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// CapacityLedger is the single writer of each course's participant count.
// Work for one course runs one at a time in arrival order; work for different
// courses runs in parallel.
type CapacityLedger struct {
	courses       domain.CourseRepository
	registrations domain.RegistrationRepository
	slots         *keyedSemaphore
}

// NewCapacityLedger creates a ledger over the given repositories.
func NewCapacityLedger(courses domain.CourseRepository, registrations domain.RegistrationRepository) *CapacityLedger {
	return &CapacityLedger{
		courses:       courses,
		registrations: registrations,
		slots:         newKeyedSemaphore(),
	}
}

// Slot is exclusive access to one course's count. It is only valid inside the
// function passed to Run.
type Slot struct {
	ledger   *CapacityLedger
	courseID string
}

// Run waits for the course's slot and calls fn while holding it.
func (l *CapacityLedger) Run(ctx context.Context, courseID string, fn func(ctx context.Context, slot *Slot) error) error {
	release, err := l.slots.acquire(ctx, courseID)
	if err != nil {
		return fmt.Errorf("waiting for course %s: %w", courseID, err)
	}
	defer release()

	return fn(ctx, &Slot{ledger: l, courseID: courseID})
}

// Increment adds one participant, never exceeding the course's maximum.
func (l *CapacityLedger) Increment(ctx context.Context, courseID string) (int, error) {
	var n int
	err := l.Run(ctx, courseID, func(ctx context.Context, slot *Slot) error {
		var err error
		n, err = slot.Increment(ctx)
		return err
	})
	return n, err
}

// Decrement removes one participant, never going below zero.
func (l *CapacityLedger) Decrement(ctx context.Context, courseID string) (int, error) {
	var n int
	err := l.Run(ctx, courseID, func(ctx context.Context, slot *Slot) error {
		var err error
		n, err = slot.Decrement(ctx)
		return err
	})
	return n, err
}

// Increment adds one participant, clamped to [0, max]. A course that no
// longer exists is left alone.
func (s *Slot) Increment(ctx context.Context) (int, error) {
	return s.adjust(ctx, 1)
}

// Decrement removes one participant, clamped to [0, max]. A course that no
// longer exists is left alone.
func (s *Slot) Decrement(ctx context.Context) (int, error) {
	return s.adjust(ctx, -1)
}

func (s *Slot) adjust(ctx context.Context, delta int) (int, error) {
	course, err := s.ledger.courses.GetByID(ctx, s.courseID)
	if errors.Is(err, domain.ErrCourseNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storageErr("reading participant count", err)
	}
	return s.set(ctx, course, course.CurrentParticipants+delta)
}

func (s *Slot) set(ctx context.Context, course domain.Course, n int) (int, error) {
	n = clampCount(n, course.MaxParticipants)
	if n == course.CurrentParticipants {
		return n, nil
	}
	err := s.ledger.courses.UpdateParticipants(ctx, s.courseID, n)
	if errors.Is(err, domain.ErrCourseNotFound) {
		return 0, nil
	}
	if err != nil {
		return course.CurrentParticipants, storageErr("writing participant count", err)
	}
	return n, nil
}

func clampCount(n, maxParticipants int) int {
	return min(max(n, 0), max(maxParticipants, 0))
}

// Reconciliation compares a course's stored count with its confirmed
// registrations.
type Reconciliation struct {
	CourseID   string
	CourseName string
	Recorded   int
	Confirmed  int
	// Expected is Confirmed clamped to the course's maximum.
	Expected int
}

// Drifted reports whether the stored count disagrees with the registrations.
func (r Reconciliation) Drifted() bool {
	return r.Recorded != r.Expected
}

// Reconcile recounts a course's confirmed registrations and stores the result.
func (l *CapacityLedger) Reconcile(ctx context.Context, courseID string) (Reconciliation, error) {
	var rec Reconciliation
	err := l.Run(ctx, courseID, func(ctx context.Context, slot *Slot) error {
		course, err := l.courses.GetByID(ctx, courseID)
		if err != nil {
			return storageErr("reading course", err)
		}
		rec, err = l.inspect(ctx, course)
		if err != nil {
			return err
		}
		if _, err := slot.set(ctx, course, rec.Expected); err != nil {
			return err
		}
		return nil
	})
	return rec, err
}

// Audit inspects every course and returns the ones whose count has drifted.
// Nothing is written.
func (l *CapacityLedger) Audit(ctx context.Context) ([]Reconciliation, error) {
	courses, err := l.courses.List(ctx)
	if err != nil {
		return nil, storageErr("listing courses", err)
	}

	var drifted []Reconciliation
	for _, c := range courses {
		err := l.Run(ctx, c.ID, func(ctx context.Context, _ *Slot) error {
			course, err := l.courses.GetByID(ctx, c.ID)
			if errors.Is(err, domain.ErrCourseNotFound) {
				return nil
			}
			if err != nil {
				return storageErr("reading course", err)
			}
			rec, err := l.inspect(ctx, course)
			if err != nil {
				return err
			}
			if rec.Drifted() {
				drifted = append(drifted, rec)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return drifted, nil
}

func (l *CapacityLedger) inspect(ctx context.Context, course domain.Course) (Reconciliation, error) {
	confirmed := domain.RegistrationConfirmed
	regs, err := l.registrations.List(ctx, domain.RegistrationFilter{CourseID: course.ID, Status: &confirmed})
	if err != nil {
		return Reconciliation{}, storageErr("counting registrations", err)
	}
	return Reconciliation{
		CourseID:   course.ID,
		CourseName: course.Name,
		Recorded:   course.CurrentParticipants,
		Confirmed:  len(regs),
		Expected:   clampCount(len(regs), course.MaxParticipants),
	}, nil
}
