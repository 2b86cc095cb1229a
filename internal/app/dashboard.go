package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// Summary is the admin dashboard's headline numbers.
type Summary struct {
	TotalCourses           int
	ActiveCourses          int
	UpcomingCourses        int
	ClosedCourses          int
	ConfirmedRegistrations int
	CancelledRegistrations int
	OpenSeats              int
}

// DashboardService computes the admin summary.
type DashboardService struct {
	courses       domain.CourseRepository
	registrations domain.RegistrationRepository
	opts          options
}

// NewDashboardService creates a service with the given adapters.
func NewDashboardService(courses domain.CourseRepository, registrations domain.RegistrationRepository, opts ...Option) *DashboardService {
	return &DashboardService{
		courses:       courses,
		registrations: registrations,
		opts:          newOptions(opts),
	}
}

// Summary loads courses and registrations in parallel and counts them.
func (s *DashboardService) Summary(ctx context.Context) (Summary, error) {
	var (
		courses []domain.Course
		regs    []domain.Registration
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if courses, err = s.courses.List(gctx); err != nil {
			return storageErr("listing courses", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if regs, err = s.registrations.List(gctx, domain.RegistrationFilter{}); err != nil {
			return storageErr("listing registrations", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	now := s.opts.today()
	sum := Summary{TotalCourses: len(courses)}
	for _, c := range courses {
		switch c.StatusAt(now, s.opts.loc) {
		case domain.CourseStatusActive:
			sum.ActiveCourses++
			sum.OpenSeats += c.Remaining()
		case domain.CourseStatusUpcoming:
			sum.UpcomingCourses++
		case domain.CourseStatusClosed:
			sum.ClosedCourses++
		}
	}
	for _, r := range regs {
		switch r.Status {
		case domain.RegistrationConfirmed:
			sum.ConfirmedRegistrations++
		case domain.RegistrationCancelled:
			sum.CancelledRegistrations++
		}
	}
	return sum, nil
}
