package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// Compile-time check: CourseRepository implements domain.CourseRepository.
var _ domain.CourseRepository = (*CourseRepository)(nil)

// CourseRepository implements domain.CourseRepository using SQLite.
type CourseRepository struct {
	db *sql.DB
}

const courseColumns = `id, course_name, course_gen, description, start_date, end_date,
	registration_start, registration_end, max_participants, current_participants,
	location, instructor`

func (r *CourseRepository) Create(ctx context.Context, c domain.Course) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO courses (`+courseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Generation, c.Description,
		formatDate(c.StartDate), formatDate(c.EndDate),
		formatDate(c.RegistrationStart), formatDate(c.RegistrationEnd),
		c.MaxParticipants, c.CurrentParticipants,
		c.Location, c.Instructor,
	)
	if err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (domain.Course, error) {
	c, err := scanCourse(r.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	return c, err
}

func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	courses := []domain.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}

	return courses, rows.Err()
}

func (r *CourseRepository) Update(ctx context.Context, c domain.Course) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE courses SET course_name = ?, course_gen = ?, description = ?,
		 start_date = ?, end_date = ?, registration_start = ?, registration_end = ?,
		 max_participants = ?, location = ?, instructor = ?
		 WHERE id = ?`,
		c.Name, c.Generation, c.Description,
		formatDate(c.StartDate), formatDate(c.EndDate),
		formatDate(c.RegistrationStart), formatDate(c.RegistrationEnd),
		c.MaxParticipants, c.Location, c.Instructor, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating course: %w", err)
	}
	return checkAffected(result, domain.ErrCourseNotFound)
}

func (r *CourseRepository) UpdateParticipants(ctx context.Context, id string, count int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE courses SET current_participants = ? WHERE id = ?`, count, id,
	)
	if err != nil {
		return fmt.Errorf("updating participant count: %w", err)
	}
	return checkAffected(result, domain.ErrCourseNotFound)
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	return checkAffected(result, domain.ErrCourseNotFound)
}

func scanCourse(row scanner) (domain.Course, error) {
	var c domain.Course
	var start, end, regStart, regEnd string

	err := row.Scan(&c.ID, &c.Name, &c.Generation, &c.Description,
		&start, &end, &regStart, &regEnd,
		&c.MaxParticipants, &c.CurrentParticipants,
		&c.Location, &c.Instructor,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Course{}, err
		}
		return domain.Course{}, fmt.Errorf("scanning course: %w", err)
	}

	for _, col := range []struct {
		name  string
		value string
		dst   *time.Time
	}{
		{"start_date", start, &c.StartDate},
		{"end_date", end, &c.EndDate},
		{"registration_start", regStart, &c.RegistrationStart},
		{"registration_end", regEnd, &c.RegistrationEnd},
	} {
		if *col.dst, err = parseDate(col.name, col.value); err != nil {
			return domain.Course{}, fmt.Errorf("scanning course %s: %w", c.ID, err)
		}
	}

	return c, nil
}
