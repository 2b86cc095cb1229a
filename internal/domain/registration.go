package domain

import "time"

// RegistrationStatus represents the lifecycle state of a registration.
type RegistrationStatus string

const (
	// RegistrationPending is reserved for a future approval step; admission
	// never produces it.
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Event represents an action that changes a registration's status.
type Event string

const (
	EventConfirm Event = "confirm"
	EventCancel  Event = "cancel"
)

// Transition defines a valid state change: an event moves a registration from Src to Dst.
type Transition struct {
	Event Event
	Src   RegistrationStatus
	Dst   RegistrationStatus
}

// Transitions defines all valid state changes in the registration lifecycle.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventConfirm, Src: RegistrationPending, Dst: RegistrationConfirmed},
	{Event: EventCancel, Src: RegistrationPending, Dst: RegistrationCancelled},
	{Event: EventCancel, Src: RegistrationConfirmed, Dst: RegistrationCancelled},
}

// Registrant holds the personal fields submitted with a registration.
type Registrant struct {
	FirstName    string
	LastName     string
	IDCard       string
	BirthDate    string
	Phone        string
	Email        string
	Organization string
	Position     string
	Address      string
}

// Registration is one person's seat in one course.
type Registration struct {
	ID         string
	CourseID   string
	CourseName string // snapshot taken at registration time
	Registrant
	RegistrationDate time.Time
	Status           RegistrationStatus
}

// NewRegistration creates a confirmed registration for the course.
func NewRegistration(id string, course Course, registrant Registrant, now time.Time) Registration {
	y, m, d := now.Date()
	return Registration{
		ID:               id,
		CourseID:         course.ID,
		CourseName:       course.Name,
		Registrant:       registrant,
		RegistrationDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Status:           RegistrationConfirmed,
	}
}

// Active reports whether the registration holds a seat.
func (r Registration) Active() bool {
	return r.Status == RegistrationConfirmed
}
