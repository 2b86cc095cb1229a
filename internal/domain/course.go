package domain

import "time"

// CourseStatus is the display label derived from the registration window.
// It is computed on every read and never stored.
type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "active"
	CourseStatusUpcoming CourseStatus = "upcoming"
	CourseStatusClosed   CourseStatus = "closed"
)

// CourseStatuses lists every derivable status in display order.
var CourseStatuses = []CourseStatus{CourseStatusActive, CourseStatusUpcoming, CourseStatusClosed}

// DateLayout is the calendar date format used at every boundary.
const DateLayout = time.DateOnly

// Course is a capacity-limited training course.
//
// Date fields carry calendar dates only; their clock component is ignored and
// they are interpreted in the service's configured location.
type Course struct {
	ID                  string
	Name                string
	Generation          string
	Description         string
	StartDate           time.Time
	EndDate             time.Time
	RegistrationStart   time.Time
	RegistrationEnd     time.Time
	MaxParticipants     int
	CurrentParticipants int
	Location            string
	Instructor          string
}

// NewCourse creates a course with no participants.
func NewCourse(id string, details CourseDetails) Course {
	return Course{
		ID:                id,
		Name:              details.Name,
		Generation:        details.Generation,
		Description:       details.Description,
		StartDate:         details.StartDate,
		EndDate:           details.EndDate,
		RegistrationStart: details.RegistrationStart,
		RegistrationEnd:   details.RegistrationEnd,
		MaxParticipants:   details.MaxParticipants,
		Location:          details.Location,
		Instructor:        details.Instructor,
	}
}

// CourseDetails holds the admin-editable fields of a course.
type CourseDetails struct {
	Name              string
	Generation        string
	Description       string
	StartDate         time.Time
	EndDate           time.Time
	RegistrationStart time.Time
	RegistrationEnd   time.Time
	MaxParticipants   int
	Location          string
	Instructor        string
}

// Validate checks the rules an admin edit must satisfy.
func (d CourseDetails) Validate() error {
	switch {
	case d.Name == "":
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	case d.MaxParticipants <= 0:
		return &ValidationError{Field: "maxParticipants", Reason: "must be a positive integer"}
	case d.RegistrationEnd.Before(d.RegistrationStart):
		return &ValidationError{Field: "registrationEnd", Reason: "must not be before registrationStart"}
	case d.EndDate.Before(d.StartDate):
		return &ValidationError{Field: "endDate", Reason: "must not be before startDate"}
	}
	return nil
}

// Apply copies the editable fields onto the course, leaving identity and
// occupancy untouched.
func (c Course) Apply(d CourseDetails) Course {
	c.Name = d.Name
	c.Generation = d.Generation
	c.Description = d.Description
	c.StartDate = d.StartDate
	c.EndDate = d.EndDate
	c.RegistrationStart = d.RegistrationStart
	c.RegistrationEnd = d.RegistrationEnd
	c.MaxParticipants = d.MaxParticipants
	c.Location = d.Location
	c.Instructor = d.Instructor
	return c
}

// RegistrationOpens returns the first instant of the registration window.
func (c Course) RegistrationOpens(loc *time.Location) time.Time {
	y, m, d := c.RegistrationStart.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// RegistrationDeadline returns the last instant of the registrationEnd day.
func (c Course) RegistrationDeadline(loc *time.Location) time.Time {
	y, m, d := c.RegistrationEnd.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

// StatusAt derives the course status at the given instant.
func (c Course) StatusAt(now time.Time, loc *time.Location) CourseStatus {
	switch {
	case now.Before(c.RegistrationOpens(loc)):
		return CourseStatusUpcoming
	case now.After(c.RegistrationDeadline(loc)):
		return CourseStatusClosed
	default:
		return CourseStatusActive
	}
}

// IsFull reports whether no seats remain.
func (c Course) IsFull() bool {
	return c.CurrentParticipants >= c.MaxParticipants
}

// Remaining returns the number of free seats, never negative.
func (c Course) Remaining() int {
	return max(0, c.MaxParticipants-c.CurrentParticipants)
}

// CheckAdmission applies the capacity and deadline rules, in that order.
func (c Course) CheckAdmission(now time.Time, loc *time.Location) error {
	if c.IsFull() {
		return ErrCourseFull
	}
	if now.After(c.RegistrationDeadline(loc)) {
		return ErrRegistrationClosed
	}
	return nil
}

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
