package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/coursereg/internal/app"
)

// EventWorker processes registration event jobs from the River queue.
// It records the event; a mailer can hang off it later.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	slog.InfoContext(ctx, "processing registration event",
		"event", job.Args.Event,
		"registration_id", job.Args.RegistrationID,
		"course_id", job.Args.CourseID,
		"status", job.Args.Status,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// AuditJobArgs triggers a capacity audit across every course.
type AuditJobArgs struct{}

// Kind returns the unique job type identifier used by River's job routing.
func (AuditJobArgs) Kind() string { return "capacity.audit" }

// Auditor compares stored participant counts with confirmed registrations.
type Auditor interface {
	Audit(ctx context.Context) ([]app.Reconciliation, error)
}

// AuditWorker runs the capacity audit and logs every drifted course. It does
// not repair anything; an administrator reconciles explicitly.
type AuditWorker struct {
	river.WorkerDefaults[AuditJobArgs]
	auditor Auditor
}

// NewAuditWorker creates a worker that audits through the given auditor.
func NewAuditWorker(auditor Auditor) *AuditWorker {
	return &AuditWorker{auditor: auditor}
}

// Work runs one audit pass.
func (w *AuditWorker) Work(ctx context.Context, job *river.Job[AuditJobArgs]) error {
	drifted, err := w.auditor.Audit(ctx)
	if err != nil {
		return err
	}

	for _, rec := range drifted {
		slog.WarnContext(ctx, "participant count drift",
			"course_id", rec.CourseID,
			"course_name", rec.CourseName,
			"recorded", rec.Recorded,
			"confirmed", rec.Confirmed,
			"expected", rec.Expected,
		)
	}
	slog.InfoContext(ctx, "capacity audit finished",
		"drifted", len(drifted),
		"job_id", job.ID,
	)
	return nil
}
