package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/neomorfeo/coursereg/internal/domain"
)

func TestCourse_CreateAndGetByID(t *testing.T) {
	repo := newTestStore(t).Courses()
	ctx := context.Background()

	want := sampleCourse("C1")
	if err := repo.Create(ctx, want); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "C1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestCourse_GetByID_NotFound(t *testing.T) {
	repo := newTestStore(t).Courses()

	_, err := repo.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrCourseNotFound) {
		t.Errorf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestCourse_ListKeepsInsertionOrder(t *testing.T) {
	repo := newTestStore(t).Courses()
	ctx := context.Background()

	for _, id := range []string{"C3", "C1", "C2"} {
		if err := repo.Create(ctx, sampleCourse(id)); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	courses, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(courses) != 3 || courses[0].ID != "C3" || courses[1].ID != "C1" || courses[2].ID != "C2" {
		t.Errorf("order = %v", courses)
	}
}

func TestCourse_ListEmpty(t *testing.T) {
	repo := newTestStore(t).Courses()

	courses, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if courses == nil || len(courses) != 0 {
		t.Errorf("courses = %v, want empty non-nil slice", courses)
	}
}

func TestCourse_UpdateLeavesCountAlone(t *testing.T) {
	repo := newTestStore(t).Courses()
	ctx := context.Background()

	c := sampleCourse("C1")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.UpdateParticipants(ctx, "C1", 4); err != nil {
		t.Fatalf("UpdateParticipants failed: %v", err)
	}

	c.Name = "ชื่อใหม่"
	c.MaxParticipants = 40
	c.CurrentParticipants = 0
	if err := repo.Update(ctx, c); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "C1")
	if got.Name != "ชื่อใหม่" || got.MaxParticipants != 40 {
		t.Errorf("fields not updated: %+v", got)
	}
	if got.CurrentParticipants != 4 {
		t.Errorf("CurrentParticipants = %d, want 4", got.CurrentParticipants)
	}
}

func TestCourse_WritesToMissingCourse(t *testing.T) {
	repo := newTestStore(t).Courses()
	ctx := context.Background()

	if err := repo.Update(ctx, sampleCourse("nope")); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Errorf("Update: expected ErrCourseNotFound, got %v", err)
	}
	if err := repo.UpdateParticipants(ctx, "nope", 1); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Errorf("UpdateParticipants: expected ErrCourseNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "nope"); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Errorf("Delete: expected ErrCourseNotFound, got %v", err)
	}
}

func TestCourse_NegativeCountRejected(t *testing.T) {
	repo := newTestStore(t).Courses()
	ctx := context.Background()
	if err := repo.Create(ctx, sampleCourse("C1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.UpdateParticipants(ctx, "C1", -1); err == nil {
		t.Error("expected CHECK constraint failure for negative count")
	}
}

func TestCourse_Delete(t *testing.T) {
	repo := newTestStore(t).Courses()
	ctx := context.Background()
	if err := repo.Create(ctx, sampleCourse("C1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(ctx, "C1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, "C1"); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Errorf("expected ErrCourseNotFound after delete, got %v", err)
	}
}
