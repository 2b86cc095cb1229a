package domain

import "context"

// CourseRepository defines the persistence contract for courses. Each call
// commits on its own; there is no multi-row transaction.
type CourseRepository interface {
	Create(ctx context.Context, course Course) error
	GetByID(ctx context.Context, id string) (Course, error)
	List(ctx context.Context) ([]Course, error)
	// Update writes every column except the participant count.
	Update(ctx context.Context, course Course) error
	// UpdateParticipants writes only the participant count. The capacity
	// ledger is its sole caller.
	UpdateParticipants(ctx context.Context, id string, count int) error
	Delete(ctx context.Context, id string) error
}

// RegistrationRepository defines the persistence contract for registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, reg Registration) error
	GetByID(ctx context.Context, id string) (Registration, error)
	List(ctx context.Context, filter RegistrationFilter) ([]Registration, error)
	UpdateStatus(ctx context.Context, id string, status RegistrationStatus) error
}

// RegistrationFilter holds optional criteria for listing registrations.
// Empty fields match everything.
type RegistrationFilter struct {
	CourseID string
	IDCard   string
	Status   *RegistrationStatus
}

// FaqRepository defines the persistence contract for FAQs.
type FaqRepository interface {
	ListFaqs(ctx context.Context) ([]Faq, error)
	CreateFaq(ctx context.Context, faq Faq) error
	UpdateFaq(ctx context.Context, faq Faq) error
	DeleteFaq(ctx context.Context, id string) error
}

// AnnouncementRepository defines the persistence contract for announcements.
type AnnouncementRepository interface {
	ListAnnouncements(ctx context.Context) ([]Announcement, error)
	CreateAnnouncement(ctx context.Context, a Announcement) error
	UpdateAnnouncement(ctx context.Context, a Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) error
}

// ContactInfoRepository stores the contact singleton.
type ContactInfoRepository interface {
	GetContactInfo(ctx context.Context) (ContactInfo, error)
	// ReplaceContactInfo swaps the stored record wholesale.
	ReplaceContactInfo(ctx context.Context, info ContactInfo) error
}

// EventPublisher defines the contract for emitting registration events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, reg Registration) error
}

// TransitionValidator checks whether an event is allowed from the current
// status and returns the resulting status.
type TransitionValidator interface {
	Apply(ctx context.Context, current RegistrationStatus, event Event) (RegistrationStatus, error)
}
