package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/coursereg/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// EventJobArgs carries a registration event to the async worker. It holds a
// snapshot of the registration at publish time, so the worker never needs
// to query the database.
type EventJobArgs struct {
	Event          string `json:"event"`
	RegistrationID string `json:"registration_id"`
	CourseID       string `json:"course_id"`
	CourseName     string `json:"course_name"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Status         string `json:"status"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "registration.event" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a registration event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, reg domain.Registration) error {
	_, err := p.client.Insert(ctx, EventJobArgs{
		Event:          string(event),
		RegistrationID: reg.ID,
		CourseID:       reg.CourseID,
		CourseName:     reg.CourseName,
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		Email:          reg.Email,
		Status:         string(reg.Status),
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}
