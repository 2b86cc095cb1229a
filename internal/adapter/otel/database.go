package otel

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// OpenDB opens a SQLite database wrapped by otelsql, so every statement is
// traced and the pool reports its stats as metrics. configure, when non-nil,
// runs on the fresh pool before anything else uses it.
func OpenDB(dataSourceName string, configure func(*sql.DB) error) (*sql.DB, error) {
	attrs := otelsql.WithAttributes(semconv.DBSystemSqlite)

	db, err := otelsql.Open("sqlite", dataSourceName, attrs)
	if err != nil {
		return nil, fmt.Errorf("opening instrumented database: %w", err)
	}

	if configure != nil {
		if err := configure(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring database: %w", err)
		}
	}

	if _, err := otelsql.RegisterDBStatsMetrics(db, attrs); err != nil {
		db.Close()
		return nil, fmt.Errorf("registering db stats metrics: %w", err)
	}

	return db, nil
}
