package app_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/neomorfeo/coursereg/internal/domain"
)

var (
	bangkok  = time.FixedZone("ICT", 7*60*60)
	errDisk  = errors.New("disk I/O error")
	fixedNow = time.Date(2026, 3, 15, 10, 0, 0, 0, bangkok)
)

func clock() time.Time { return fixedNow }

func date(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// --- Mocks ---

type mockCourses struct {
	mu      sync.Mutex
	courses map[string]domain.Course
	order   []string

	// failWrites fails the next n UpdateParticipants calls.
	failWrites int
	writes     int
	failList   error
}

func newMockCourses(cs ...domain.Course) *mockCourses {
	m := &mockCourses{courses: make(map[string]domain.Course)}
	for _, c := range cs {
		m.courses[c.ID] = c
		m.order = append(m.order, c.ID)
	}
	return m
}

func (m *mockCourses) Create(_ context.Context, c domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.ID] = c
	m.order = append(m.order, c.ID)
	return nil
}

func (m *mockCourses) GetByID(_ context.Context, id string) (domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	return c, nil
}

func (m *mockCourses) List(_ context.Context) ([]domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	out := make([]domain.Course, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.courses[id])
	}
	return out, nil
}

func (m *mockCourses) Update(_ context.Context, c domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.courses[c.ID]
	if !ok {
		return domain.ErrCourseNotFound
	}
	c.CurrentParticipants = old.CurrentParticipants
	m.courses[c.ID] = c
	return nil
}

func (m *mockCourses) UpdateParticipants(_ context.Context, id string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites > 0 {
		m.failWrites--
		return errDisk
	}
	c, ok := m.courses[id]
	if !ok {
		return domain.ErrCourseNotFound
	}
	m.writes++
	c.CurrentParticipants = n
	m.courses[id] = c
	return nil
}

func (m *mockCourses) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[id]; !ok {
		return domain.ErrCourseNotFound
	}
	delete(m.courses, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return nil
}

func (m *mockCourses) count(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.courses[id].CurrentParticipants
}

func (m *mockCourses) set(id string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.courses[id]
	c.CurrentParticipants = n
	m.courses[id] = c
}

type mockRegistrations struct {
	mu   sync.Mutex
	regs []domain.Registration

	failCreate error
	failList   error
}

func newMockRegistrations(rs ...domain.Registration) *mockRegistrations {
	return &mockRegistrations{regs: rs}
}

func (m *mockRegistrations) Create(_ context.Context, r domain.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	m.regs = append(m.regs, r)
	return nil
}

func (m *mockRegistrations) GetByID(_ context.Context, id string) (domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.regs {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Registration{}, domain.ErrRegistrationNotFound
}

func (m *mockRegistrations) List(_ context.Context, f domain.RegistrationFilter) ([]domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	var out []domain.Registration
	for _, r := range m.regs {
		if f.CourseID != "" && r.CourseID != f.CourseID {
			continue
		}
		if f.IDCard != "" && r.IDCard != f.IDCard {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRegistrations) UpdateStatus(_ context.Context, id string, s domain.RegistrationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.regs {
		if m.regs[i].ID == id {
			m.regs[i].Status = s
			return nil
		}
	}
	return domain.ErrRegistrationNotFound
}

func (m *mockRegistrations) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.regs)
}

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

type publishedEvent struct {
	event domain.Event
	reg   domain.Registration
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event, r domain.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{event: e, reg: r})
	return m.err
}

// tableValidator applies domain.Transitions directly.
type tableValidator struct{}

func (tableValidator) Apply(_ context.Context, current domain.RegistrationStatus, event domain.Event) (domain.RegistrationStatus, error) {
	for _, t := range domain.Transitions {
		if t.Event == event && t.Src == current {
			return t.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: event, Current: current}
}

type mockContent struct {
	faqs          []domain.Faq
	announcements []domain.Announcement
	contact       *domain.ContactInfo
}

func (m *mockContent) ListFaqs(context.Context) ([]domain.Faq, error) {
	return slices.Clone(m.faqs), nil
}

func (m *mockContent) CreateFaq(_ context.Context, f domain.Faq) error {
	m.faqs = append(m.faqs, f)
	return nil
}

func (m *mockContent) UpdateFaq(_ context.Context, f domain.Faq) error {
	for i := range m.faqs {
		if m.faqs[i].ID == f.ID {
			m.faqs[i] = f
			return nil
		}
	}
	return domain.ErrFaqNotFound
}

func (m *mockContent) DeleteFaq(_ context.Context, id string) error {
	n := len(m.faqs)
	m.faqs = slices.DeleteFunc(m.faqs, func(f domain.Faq) bool { return f.ID == id })
	if len(m.faqs) == n {
		return domain.ErrFaqNotFound
	}
	return nil
}

func (m *mockContent) ListAnnouncements(context.Context) ([]domain.Announcement, error) {
	return slices.Clone(m.announcements), nil
}

func (m *mockContent) CreateAnnouncement(_ context.Context, a domain.Announcement) error {
	m.announcements = append(m.announcements, a)
	return nil
}

func (m *mockContent) UpdateAnnouncement(_ context.Context, a domain.Announcement) error {
	for i := range m.announcements {
		if m.announcements[i].ID == a.ID {
			m.announcements[i] = a
			return nil
		}
	}
	return domain.ErrAnnouncementNotFound
}

func (m *mockContent) DeleteAnnouncement(_ context.Context, id string) error {
	n := len(m.announcements)
	m.announcements = slices.DeleteFunc(m.announcements, func(a domain.Announcement) bool { return a.ID == id })
	if len(m.announcements) == n {
		return domain.ErrAnnouncementNotFound
	}
	return nil
}

func (m *mockContent) GetContactInfo(context.Context) (domain.ContactInfo, error) {
	if m.contact == nil {
		return domain.ContactInfo{}, domain.ErrContactInfoNotSet
	}
	return *m.contact, nil
}

func (m *mockContent) ReplaceContactInfo(_ context.Context, info domain.ContactInfo) error {
	m.contact = &info
	return nil
}

// openCourse returns a course whose window contains fixedNow.
func openCourse(id string, maxParticipants int) domain.Course {
	return domain.Course{
		ID:                id,
		Name:              "การบริหารจัดการโรงพยาบาล",
		Generation:        "รุ่นที่ 1",
		StartDate:         date("2026-05-01"),
		EndDate:           date("2026-05-10"),
		RegistrationStart: date("2026-03-01"),
		RegistrationEnd:   date("2026-03-31"),
		MaxParticipants:   maxParticipants,
	}
}
