package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// CourseListing is a course together with its status at read time.
type CourseListing struct {
	domain.Course
	Status domain.CourseStatus
}

// CourseUpdate is an admin edit. CurrentParticipants, when set, must match the
// stored count: the ledger owns that field.
type CourseUpdate struct {
	domain.CourseDetails
	CurrentParticipants *int
}

// CourseService manages the course catalogue.
type CourseService struct {
	courses domain.CourseRepository
	ledger  *CapacityLedger
	opts    options
}

// NewCourseService creates a service with the given adapters.
func NewCourseService(courses domain.CourseRepository, ledger *CapacityLedger, opts ...Option) *CourseService {
	return &CourseService{
		courses: courses,
		ledger:  ledger,
		opts:    newOptions(opts),
	}
}

func (s *CourseService) listing(c domain.Course) CourseListing {
	return CourseListing{Course: c, Status: c.StatusAt(s.opts.today(), s.opts.loc)}
}

// Create adds a course with no participants.
func (s *CourseService) Create(ctx context.Context, details domain.CourseDetails) (CourseListing, error) {
	if err := details.Validate(); err != nil {
		return CourseListing{}, err
	}

	id, err := generateID("C")
	if err != nil {
		return CourseListing{}, fmt.Errorf("generating course id: %w", err)
	}

	course := domain.NewCourse(id, details)
	if err := s.courses.Create(ctx, course); err != nil {
		return CourseListing{}, storageErr("creating course", err)
	}

	slog.InfoContext(ctx, "course created", "course_id", course.ID, "name", course.Name)
	return s.listing(course), nil
}

// GetByID returns a course with its current status.
func (s *CourseService) GetByID(ctx context.Context, id string) (CourseListing, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return CourseListing{}, storageErr("loading course", err)
	}
	return s.listing(course), nil
}

// List returns every course with its current status, in store order.
func (s *CourseService) List(ctx context.Context) ([]CourseListing, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, storageErr("listing courses", err)
	}
	out := make([]CourseListing, 0, len(courses))
	for _, c := range courses {
		out = append(out, s.listing(c))
	}
	return out, nil
}

// ListOpen returns the courses shown on the public catalogue: everything not
// yet closed.
func (s *CourseService) ListOpen(ctx context.Context) ([]CourseListing, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	open := all[:0]
	for _, c := range all {
		if c.Status != domain.CourseStatusClosed {
			open = append(open, c)
		}
	}
	return open, nil
}

// Query runs the admin search, filter, sort and pagination pipeline.
func (s *CourseService) Query(ctx context.Context, q CourseQuery) (CoursePage, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return CoursePage{}, storageErr("listing courses", err)
	}
	return QueryCourses(courses, q, s.opts.today(), s.opts.loc), nil
}

// Update applies an admin edit. It holds the course's slot so the capacity
// check sees the count left by any in-flight admission.
func (s *CourseService) Update(ctx context.Context, id string, upd CourseUpdate) (CourseListing, error) {
	if err := upd.Validate(); err != nil {
		return CourseListing{}, err
	}

	var updated domain.Course
	err := s.ledger.Run(ctx, id, func(ctx context.Context, _ *Slot) error {
		course, err := s.courses.GetByID(ctx, id)
		if err != nil {
			return storageErr("loading course", err)
		}
		if upd.CurrentParticipants != nil && *upd.CurrentParticipants != course.CurrentParticipants {
			return domain.ErrParticipantsReadOnly
		}
		if upd.MaxParticipants < course.CurrentParticipants {
			return &domain.CapacityBelowOccupancyError{
				CourseID: id,
				Max:      upd.MaxParticipants,
				Current:  course.CurrentParticipants,
			}
		}

		updated = course.Apply(upd.CourseDetails)
		if err := s.courses.Update(ctx, updated); err != nil {
			return storageErr("updating course", err)
		}
		return nil
	})
	if err != nil {
		return CourseListing{}, err
	}

	slog.InfoContext(ctx, "course updated", "course_id", id)
	return s.listing(updated), nil
}

// Delete removes a course. Its registrations are kept for the record.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	err := s.ledger.Run(ctx, id, func(ctx context.Context, _ *Slot) error {
		if err := s.courses.Delete(ctx, id); err != nil {
			return storageErr("deleting course", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "course deleted", "course_id", id)
	return nil
}
