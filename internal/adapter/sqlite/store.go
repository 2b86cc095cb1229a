package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/neomorfeo/coursereg/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store owns the SQLite connection and hands out the repositories built on it.
type Store struct {
	db *sql.DB
}

// New opens a SQLite database, runs migrations, and returns a ready store.
func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := Configure(db); err != nil {
		db.Close()
		return nil, err
	}

	return NewFromDB(db)
}

// Configure applies the pool and pragma settings SQLite needs. A single
// connection serializes writers and keeps a :memory: database shared by every
// caller; WAL lets readers proceed during a write.
func Configure(db *sql.DB) error {
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(pragma), err)
		}
	}
	return nil
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready store.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Courses returns the course repository.
func (s *Store) Courses() *CourseRepository {
	return &CourseRepository{db: s.db}
}

// Registrations returns the registration repository.
func (s *Store) Registrations() *RegistrationRepository {
	return &RegistrationRepository{db: s.db}
}

// Content returns the FAQ, announcement and contact repository.
func (s *Store) Content() *ContentRepository {
	return &ContentRepository{db: s.db}
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func parseDate(column, s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// checkAffected maps a zero-row write to notFound.
func checkAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}
