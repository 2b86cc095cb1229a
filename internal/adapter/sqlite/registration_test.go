package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/neomorfeo/coursereg/internal/domain"
)

func sampleRegistration(id, courseID, idCard string) domain.Registration {
	return domain.Registration{
		ID:         id,
		CourseID:   courseID,
		CourseName: "การบริหารจัดการโรงพยาบาล",
		Registrant: domain.Registrant{
			FirstName:    "สมชาย",
			LastName:     "ใจดี",
			IDCard:       idCard,
			BirthDate:    "1985-06-01",
			Phone:        "081-234-5678",
			Email:        "somchai@example.com",
			Organization: "โรงพยาบาลนนทบุรี",
			Position:     "ผู้อำนวยการ",
			Address:      "นนทบุรี",
		},
		RegistrationDate: date("2026-03-15"),
		Status:           domain.RegistrationConfirmed,
	}
}

func TestRegistration_CreateAndGetByID(t *testing.T) {
	repo := newTestStore(t).Registrations()
	ctx := context.Background()

	want := sampleRegistration("R1", "C1", "111")
	if err := repo.Create(ctx, want); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "R1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestRegistration_GetByID_NotFound(t *testing.T) {
	repo := newTestStore(t).Registrations()

	_, err := repo.GetByID(context.Background(), "nope")
	if !errors.Is(err, domain.ErrRegistrationNotFound) {
		t.Errorf("expected ErrRegistrationNotFound, got %v", err)
	}
}

func TestRegistration_ConfirmedDuplicateRejected(t *testing.T) {
	repo := newTestStore(t).Registrations()
	ctx := context.Background()

	if err := repo.Create(ctx, sampleRegistration("R1", "C1", "111")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := repo.Create(ctx, sampleRegistration("R2", "C1", "111"))
	if !errors.Is(err, domain.ErrDuplicateRegistration) {
		t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
	}

	// Same id card in another course is fine, and so is re-registering after
	// a cancellation.
	if err := repo.Create(ctx, sampleRegistration("R3", "C2", "111")); err != nil {
		t.Errorf("other course: %v", err)
	}
	if err := repo.UpdateStatus(ctx, "R1", domain.RegistrationCancelled); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if err := repo.Create(ctx, sampleRegistration("R4", "C1", "111")); err != nil {
		t.Errorf("after cancel: %v", err)
	}
}

func TestRegistration_ListFilters(t *testing.T) {
	repo := newTestStore(t).Registrations()
	ctx := context.Background()

	for i, card := range []string{"111", "222", "333"} {
		reg := sampleRegistration(fmt.Sprintf("R%d", i+1), "C1", card)
		if err := repo.Create(ctx, reg); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := repo.Create(ctx, sampleRegistration("R9", "C2", "111")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.UpdateStatus(ctx, "R2", domain.RegistrationCancelled); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	confirmed := domain.RegistrationConfirmed
	cases := []struct {
		name   string
		filter domain.RegistrationFilter
		want   int
	}{
		{"all", domain.RegistrationFilter{}, 4},
		{"by course", domain.RegistrationFilter{CourseID: "C1"}, 3},
		{"by course and status", domain.RegistrationFilter{CourseID: "C1", Status: &confirmed}, 2},
		{"by id card", domain.RegistrationFilter{IDCard: "111"}, 2},
		{"no match", domain.RegistrationFilter{CourseID: "C1", IDCard: "222", Status: &confirmed}, 0},
	}
	for _, tc := range cases {
		got, err := repo.List(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: List failed: %v", tc.name, err)
		}
		if len(got) != tc.want {
			t.Errorf("%s: got %d registrations, want %d", tc.name, len(got), tc.want)
		}
	}
}

func TestRegistration_UpdateStatus_NotFound(t *testing.T) {
	repo := newTestStore(t).Registrations()

	err := repo.UpdateStatus(context.Background(), "nope", domain.RegistrationCancelled)
	if !errors.Is(err, domain.ErrRegistrationNotFound) {
		t.Errorf("expected ErrRegistrationNotFound, got %v", err)
	}
}
