package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// Compile-time check: RegistrationRepository implements domain.RegistrationRepository.
var _ domain.RegistrationRepository = (*RegistrationRepository)(nil)

// RegistrationRepository implements domain.RegistrationRepository using SQLite.
type RegistrationRepository struct {
	db *sql.DB
}

const registrationColumns = `id, course_id, course_name, first_name, last_name, id_card,
	birth_date, phone, email, organization, position, address, registration_date, status`

func (r *RegistrationRepository) Create(ctx context.Context, reg domain.Registration) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO registrations (`+registrationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.ID, reg.CourseID, reg.CourseName,
		reg.FirstName, reg.LastName, reg.IDCard, reg.BirthDate,
		reg.Phone, reg.Email, reg.Organization, reg.Position, reg.Address,
		formatDate(reg.RegistrationDate), string(reg.Status),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRegistration
		}
		return fmt.Errorf("inserting registration: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (domain.Registration, error) {
	reg, err := scanRegistration(r.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Registration{}, domain.ErrRegistrationNotFound
	}
	return reg, err
}

func (r *RegistrationRepository) List(ctx context.Context, filter domain.RegistrationFilter) ([]domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations`
	var (
		where []string
		args  []any
	)

	if filter.CourseID != "" {
		where = append(where, `course_id = ?`)
		args = append(args, filter.CourseID)
	}
	if filter.IDCard != "" {
		where = append(where, `id_card = ?`)
		args = append(args, filter.IDCard)
	}
	if filter.Status != nil {
		where = append(where, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	defer rows.Close()

	regs := []domain.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}

	return regs, rows.Err()
}

func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status domain.RegistrationStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET status = ? WHERE id = ?`, string(status), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRegistration
		}
		return fmt.Errorf("updating registration status: %w", err)
	}
	return checkAffected(result, domain.ErrRegistrationNotFound)
}

func scanRegistration(row scanner) (domain.Registration, error) {
	var reg domain.Registration
	var regDate, status string

	err := row.Scan(&reg.ID, &reg.CourseID, &reg.CourseName,
		&reg.FirstName, &reg.LastName, &reg.IDCard, &reg.BirthDate,
		&reg.Phone, &reg.Email, &reg.Organization, &reg.Position, &reg.Address,
		&regDate, &status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Registration{}, err
		}
		return domain.Registration{}, fmt.Errorf("scanning registration: %w", err)
	}

	if reg.RegistrationDate, err = parseDate("registration_date", regDate); err != nil {
		return domain.Registration{}, fmt.Errorf("scanning registration %s: %w", reg.ID, err)
	}
	reg.Status = domain.RegistrationStatus(status)

	return reg, nil
}
