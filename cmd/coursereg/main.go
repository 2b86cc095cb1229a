package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"github.com/spf13/cobra"

	"github.com/neomorfeo/coursereg/internal/adapter/cache"
	"github.com/neomorfeo/coursereg/internal/adapter/fsm"
	handler "github.com/neomorfeo/coursereg/internal/adapter/http"
	telemetry "github.com/neomorfeo/coursereg/internal/adapter/otel"
	queue "github.com/neomorfeo/coursereg/internal/adapter/river"
	"github.com/neomorfeo/coursereg/internal/adapter/sqlite"
	"github.com/neomorfeo/coursereg/internal/app"
	"github.com/neomorfeo/coursereg/internal/config"
	"github.com/neomorfeo/coursereg/internal/domain"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		cfg     config.Config
	)

	serve := func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	}

	root := &cobra.Command{
		Use:          "coursereg",
		Short:        "Training course registration service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.Load(cfgFile); err != nil {
				return err
			}
			return setupLogger(cmd.ErrOrStderr(), cfg)
		},
		RunE: serve,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs (default)",
		RunE:  serve,
	})
	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load a demonstration catalogue into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return seedDatabase(cmd.Context(), cfg)
		},
	})

	return root
}

func setupLogger(w io.Writer, cfg config.Config) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

func serviceOptions(cfg config.Config) []app.Option {
	return []app.Option{
		app.WithLocation(cfg.Location()),
		app.WithRetryDelay(cfg.RetryDelay),
	}
}

// run wires every adapter and serves until ctx is cancelled.
func run(ctx context.Context, cfg config.Config) error {
	// --- Observability ---
	providers, err := telemetry.Setup(ctx, telemetry.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := telemetry.OpenDB(cfg.DatabasePath, sqlite.Configure)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	store, err := sqlite.NewFromDB(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("database: %w", err)
	}
	defer store.Close()

	courses := cache.NewCourseRepository(telemetry.NewTracingCourseRepository(store.Courses()), cfg.CacheTTL)
	registrations := telemetry.NewTracingRegistrationRepository(store.Registrations())
	ledger := app.NewCapacityLedger(courses, registrations)

	client, err := queue.Setup(ctx, store.DB(), queue.Options{
		Auditor:       ledger,
		AuditInterval: cfg.AuditInterval,
	})
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	// Stop drains the queue on shutdown; cancelling the start context would
	// abort running jobs instead.
	if err := client.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			slog.Error("river shutdown", "error", err)
		}
	}()

	publisher := telemetry.NewTracingPublisher(queue.NewPublisher(client))

	// --- Application ---
	opts := serviceOptions(cfg)
	services := handler.Services{
		Courses:       app.NewCourseService(courses, ledger, opts...),
		Registrations: app.NewRegistrationService(courses, registrations, ledger, publisher, fsm.New(), opts...),
		Content:       app.NewContentService(store.Content(), opts...),
		Dashboard:     app.NewDashboardService(courses, registrations, opts...),
		PageSize:      cfg.PageSize,
	}

	// --- Adapters (in) ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("coursereg listening", "addr", srv.Addr, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("stopped")
	return nil
}

func newRouter(services handler.Services) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware("coursereg", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("coursereg", "0.1.0"))
	handler.Register(api, services)
	return router
}

// logPublisher stands in for the job queue in commands that do not run it.
type logPublisher struct{}

func (logPublisher) Publish(ctx context.Context, event domain.Event, reg domain.Registration) error {
	slog.InfoContext(ctx, "registration event", "event", event, "registration_id", reg.ID)
	return nil
}
