package app_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/neomorfeo/coursereg/internal/app"
	"github.com/neomorfeo/coursereg/internal/domain"
)

type fixture struct {
	courses *mockCourses
	regs    *mockRegistrations
	pub     *mockPublisher
	svc     *app.RegistrationService
}

func newFixture(cs ...domain.Course) *fixture {
	f := &fixture{
		courses: newMockCourses(cs...),
		regs:    newMockRegistrations(),
		pub:     &mockPublisher{},
	}
	ledger := app.NewCapacityLedger(f.courses, f.regs)
	f.svc = app.NewRegistrationService(f.courses, f.regs, ledger, f.pub, tableValidator{},
		app.WithClock(clock),
		app.WithLocation(bangkok),
		app.WithRetryDelay(time.Millisecond),
	)
	return f
}

func request(courseID, idCard string) app.RegistrationRequest {
	return app.RegistrationRequest{
		CourseID: courseID,
		Registrant: domain.Registrant{
			FirstName: "สมชาย",
			LastName:  "ใจดี",
			IDCard:    idCard,
			Email:     "somchai@example.com",
		},
	}
}

func TestRegister_Success(t *testing.T) {
	f := newFixture(openCourse("C1", 2))

	reg, err := f.svc.Register(context.Background(), request("C1", "1111111111111"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reg.Status != domain.RegistrationConfirmed {
		t.Errorf("Status = %q, want %q", reg.Status, domain.RegistrationConfirmed)
	}
	if reg.CourseName != "การบริหารจัดการโรงพยาบาล" {
		t.Errorf("CourseName = %q, want course name snapshot", reg.CourseName)
	}
	if got := reg.RegistrationDate.Format(domain.DateLayout); got != "2026-03-15" {
		t.Errorf("RegistrationDate = %q, want %q", got, "2026-03-15")
	}
	if len(reg.ID) < 2 || reg.ID[0] != 'R' {
		t.Errorf("ID = %q, want R prefix", reg.ID)
	}
	if got := f.courses.count("C1"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}

	if len(f.pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.pub.events))
	}
	if f.pub.events[0].event != domain.EventConfirm {
		t.Errorf("event = %q, want %q", f.pub.events[0].event, domain.EventConfirm)
	}
}

func TestRegister_ConcurrentLastSeat(t *testing.T) {
	f := newFixture(openCourse("C1", 2))
	ids := []string{"1", "2", "3"}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Register(context.Background(), request("C1", id))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrCourseFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 2 || full != 1 {
		t.Errorf("ok = %d, full = %d, want 2 and 1", ok, full)
	}
	if got := f.courses.count("C1"); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	if got := f.regs.len(); got != 2 {
		t.Errorf("stored registrations = %d, want 2", got)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	f := newFixture(openCourse("C1", 5))
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, request("C1", "111")); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	_, err := f.svc.Register(ctx, request("C1", " 111 "))
	if !errors.Is(err, domain.ErrDuplicateRegistration) {
		t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
	}
	if got := f.courses.count("C1"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestRegister_AfterCancelAllowsReRegistration(t *testing.T) {
	f := newFixture(openCourse("C1", 5))
	ctx := context.Background()

	first, err := f.svc.Register(ctx, request("C1", "111"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.svc.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Register(ctx, request("C1", "111")); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if got := f.courses.count("C1"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestRegister_Rejections(t *testing.T) {
	closed := openCourse("CLOSED", 5)
	closed.RegistrationEnd = date("2026-03-14")
	full := openCourse("FULL", 1)
	full.CurrentParticipants = 1
	fullAndClosed := closed
	fullAndClosed.ID = "BOTH"
	fullAndClosed.MaxParticipants = 1
	fullAndClosed.CurrentParticipants = 1

	f := newFixture(closed, full, fullAndClosed)

	cases := []struct {
		name     string
		courseID string
		want     error
	}{
		{"closed", "CLOSED", domain.ErrRegistrationClosed},
		{"full", "FULL", domain.ErrCourseFull},
		{"full wins over closed", "BOTH", domain.ErrCourseFull},
		{"unknown course", "NOPE", domain.ErrCourseNotFound},
		{"empty course id", "", domain.ErrCourseNotFound},
	}
	for _, tc := range cases {
		_, err := f.svc.Register(context.Background(), request(tc.courseID, "111"))
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if got := f.regs.len(); got != 0 {
		t.Errorf("stored registrations = %d, want 0", got)
	}
	if len(f.pub.events) != 0 {
		t.Errorf("events = %d, want 0", len(f.pub.events))
	}
}

func TestRegister_EmptyIDCard(t *testing.T) {
	f := newFixture(openCourse("C1", 5))

	_, err := f.svc.Register(context.Background(), request("C1", "  "))
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "idCard" {
		t.Errorf("expected idCard ValidationError, got %v", err)
	}
}

func TestRegister_RetriesCountWriteOnce(t *testing.T) {
	f := newFixture(openCourse("C1", 5))
	f.courses.failWrites = 1

	if _, err := f.svc.Register(context.Background(), request("C1", "111")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.courses.count("C1"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestRegister_InconsistencyKeepsRegistration(t *testing.T) {
	f := newFixture(openCourse("C1", 5))
	f.courses.failWrites = 2

	_, err := f.svc.Register(context.Background(), request("C1", "111"))

	var incErr *domain.StorageInconsistencyError
	if !errors.As(err, &incErr) {
		t.Fatalf("expected StorageInconsistencyError, got %v", err)
	}
	if incErr.CourseID != "C1" || incErr.RegistrationID == "" {
		t.Errorf("error = %+v, want course and registration ids", incErr)
	}
	if got := f.regs.len(); got != 1 {
		t.Errorf("stored registrations = %d, want 1 (first write is kept)", got)
	}
	if got := f.courses.count("C1"); got != 0 {
		t.Errorf("count = %d, want 0", got)
	}
	if len(f.pub.events) != 0 {
		t.Error("no event should be published for an inconsistent commit")
	}
}

func TestRegister_CreateFailureIsUnavailable(t *testing.T) {
	f := newFixture(openCourse("C1", 5))
	f.regs.failCreate = errDisk

	_, err := f.svc.Register(context.Background(), request("C1", "111"))
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if got := f.courses.count("C1"); got != 0 {
		t.Errorf("count = %d, want 0", got)
	}
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(openCourse("C1", 5))
	f.pub.err = errors.New("queue down")

	if _, err := f.svc.Register(context.Background(), request("C1", "111")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.courses.count("C1"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestCancel_ReleasesSeat(t *testing.T) {
	f := newFixture(openCourse("C1", 2))
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, request("C1", "111"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	cancelled, err := f.svc.Cancel(ctx, reg.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.RegistrationCancelled {
		t.Errorf("Status = %q, want %q", cancelled.Status, domain.RegistrationCancelled)
	}
	if got := f.courses.count("C1"); got != 0 {
		t.Errorf("count = %d, want 0", got)
	}
	if got := f.pub.events[len(f.pub.events)-1].event; got != domain.EventCancel {
		t.Errorf("last event = %q, want %q", got, domain.EventCancel)
	}
}

func TestCancel_Twice(t *testing.T) {
	f := newFixture(openCourse("C1", 2))
	ctx := context.Background()

	a, _ := f.svc.Register(ctx, request("C1", "111"))
	if _, err := f.svc.Register(ctx, request("C1", "222")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.svc.Cancel(ctx, a.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	events := len(f.pub.events)

	again, err := f.svc.Cancel(ctx, a.ID)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if again.Status != domain.RegistrationCancelled {
		t.Errorf("Status = %q, want cancelled", again.Status)
	}
	if got := f.courses.count("C1"); got != 1 {
		t.Errorf("count = %d, want 1 (second cancel must not decrement)", got)
	}
	if len(f.pub.events) != events {
		t.Error("second cancel must not publish")
	}
}

func TestCancel_ConcurrentDecrementsOnce(t *testing.T) {
	f := newFixture(openCourse("C1", 2))
	ctx := context.Background()

	a, _ := f.svc.Register(ctx, request("C1", "111"))
	if _, err := f.svc.Register(ctx, request("C1", "222")); err != nil {
		t.Fatalf("register: %v", err)
	}

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Cancel(ctx, a.ID); err != nil {
				t.Errorf("cancel: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := f.courses.count("C1"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestCancel_NotFound(t *testing.T) {
	f := newFixture(openCourse("C1", 2))

	_, err := f.svc.Cancel(context.Background(), "R-missing")
	if !errors.Is(err, domain.ErrRegistrationNotFound) {
		t.Errorf("expected ErrRegistrationNotFound, got %v", err)
	}
}

func TestCancel_PendingDoesNotDecrement(t *testing.T) {
	f := newFixture(openCourse("C1", 2))
	f.courses.set("C1", 1)
	f.regs.regs = append(f.regs.regs, domain.Registration{ID: "R1", CourseID: "C1", Status: domain.RegistrationPending})

	if _, err := f.svc.Cancel(context.Background(), "R1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := f.courses.count("C1"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestCancel_InconsistencyKeepsStatus(t *testing.T) {
	f := newFixture(openCourse("C1", 2))
	ctx := context.Background()

	reg, _ := f.svc.Register(ctx, request("C1", "111"))
	f.courses.failWrites = 2

	_, err := f.svc.Cancel(ctx, reg.ID)
	if !errors.Is(err, domain.ErrStorageInconsistency) {
		t.Fatalf("expected ErrStorageInconsistency, got %v", err)
	}
	stored, _ := f.regs.GetByID(ctx, reg.ID)
	if stored.Status != domain.RegistrationCancelled {
		t.Errorf("stored Status = %q, want cancelled", stored.Status)
	}
	if got := f.courses.count("C1"); got != 1 {
		t.Errorf("count = %d, want 1 until reconciled", got)
	}

	rec, err := f.svc.Reconcile(ctx, "C1")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if rec.Expected != 0 || f.courses.count("C1") != 0 {
		t.Errorf("after reconcile: %+v, count %d", rec, f.courses.count("C1"))
	}
}

func TestListForCourse(t *testing.T) {
	f := newFixture(openCourse("C1", 5), openCourse("C2", 5))
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, request("C1", "111"))
	_, _ = f.svc.Register(ctx, request("C2", "111"))

	course, regs, err := f.svc.ListForCourse(ctx, "C1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if course.ID != "C1" || len(regs) != 1 {
		t.Errorf("course %q with %d registrations, want C1 with 1", course.ID, len(regs))
	}

	if _, _, err := f.svc.ListForCourse(ctx, "missing", ""); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Errorf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestListForCourse_Search(t *testing.T) {
	f := newFixture(openCourse("C1", 5))
	ctx := context.Background()

	people := []domain.Registrant{
		{FirstName: "สมชาย", LastName: "ใจดี", IDCard: "111", Email: "somchai@example.com", Organization: "รพ.ศิริราช"},
		{FirstName: "Anna", LastName: "Lee", IDCard: "222", Email: "anna@Hospital.org", Organization: "City Hospital"},
		{FirstName: "Ben", LastName: "Hale", IDCard: "333", Email: "ben@example.com", Organization: "Clinic"},
	}
	for _, p := range people {
		if _, err := f.svc.Register(ctx, app.RegistrationRequest{CourseID: "C1", Registrant: p}); err != nil {
			t.Fatalf("Register(%s): %v", p.IDCard, err)
		}
	}

	cases := []struct {
		search string
		want   []string
	}{
		{"", []string{"111", "222", "333"}},
		{"HOSPITAL", []string{"222"}},
		{"ศิริราช", []string{"111"}},
		{"ale", []string{"333"}},
		{"example.com", []string{"111", "333"}},
		{" ben", nil},
		{"111", nil},
	}
	for _, tc := range cases {
		_, regs, err := f.svc.ListForCourse(ctx, "C1", tc.search)
		if err != nil {
			t.Fatalf("search %q: %v", tc.search, err)
		}
		var got []string
		for _, r := range regs {
			got = append(got, r.IDCard)
		}
		if !slices.Equal(got, tc.want) {
			t.Errorf("search %q = %v, want %v", tc.search, got, tc.want)
		}
	}
}
