package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
)

// Options configures the River client.
type Options struct {
	// Auditor, when set, is run every AuditInterval as a periodic job.
	Auditor       Auditor
	AuditInterval time.Duration
}

// Setup creates a River client with the workers registered and runs River's
// internal migrations. The caller must call client.Start() to begin
// processing jobs and client.Stop() for graceful shutdown.
func Setup(ctx context.Context, db *sql.DB, opts Options) (*Client, error) {
	driver := riversqlite.New(db)

	// Run River's own migrations (creates river_job, river_leader, etc.).
	// These are separate from the app's goose migrations.
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("running river migrations: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &EventWorker{})

	var periodic []*river.PeriodicJob
	if opts.Auditor != nil {
		river.AddWorker(workers, NewAuditWorker(opts.Auditor))
		if opts.AuditInterval > 0 {
			periodic = append(periodic, river.NewPeriodicJob(
				river.PeriodicInterval(opts.AuditInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return AuditJobArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			))
		}
	}

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 2},
		},
		Workers:      workers,
		PeriodicJobs: periodic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}
