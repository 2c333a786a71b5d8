// Package server assembles the storage, services, jobs and HTTP router of
// one deployment.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"hrunity/internal/domain/auth"
	"hrunity/internal/domain/employee"
	"hrunity/internal/domain/performance"
	"hrunity/internal/domain/quarter"
	"hrunity/internal/domain/questions"
	"hrunity/internal/domain/review"
	"hrunity/internal/platform/config"
	"hrunity/internal/platform/crypto"
	"hrunity/internal/platform/email"
	"hrunity/internal/platform/feedbackgen"
	"hrunity/internal/platform/jobs"
	"hrunity/internal/platform/metrics"
	"hrunity/internal/platform/storage"
	"hrunity/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Adapter storage.Adapter
	Metrics *metrics.Collector
	Jobs    *jobs.Service
	Mailer  email.Provider

	Employees    *employee.Service
	Quarters     *quarter.Service
	Qualitative  *questions.QualitativeService
	Quantitative *questions.QuantitativeService
	Records      *performance.Service
	Reviews      *review.Service
	Sessions     *auth.Service
	Tables       *storage.Registry
	Idempotency  *middleware.IdempotencyStore

	Router http.Handler

	stop context.CancelFunc
}

// New opens storage and wires every service. It does not start background
// jobs; call Start for that.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = randomSecret()
		slog.Warn("JWT_SECRET not set, using a random secret; sessions end on restart")
	}

	cipher, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("data encryption key: %w", err)
	}
	adapter, err := storage.Open(ctx, cfg, cipher)
	if err != nil {
		return nil, err
	}

	collector := metrics.New()
	ns := storage.NewNamespace(adapter, cfg.StorageNamespace).WithFailureRecorder(collector)
	runner := jobs.New(collector)

	app := &App{
		Config:       cfg,
		Adapter:      adapter,
		Metrics:      collector,
		Jobs:         runner,
		Mailer:       email.New(cfg),
		Employees:    employee.NewService(ns, cfg.SimulatedLatency, cfg.SeedSampleData),
		Quarters:     quarter.NewService(ns, cfg.SimulatedLatency, cfg.SeedSampleData),
		Qualitative:  questions.NewQualitativeService(ns, cfg.SimulatedLatency, cfg.SeedSampleData),
		Quantitative: questions.NewQuantitativeService(ns, cfg.SimulatedLatency, cfg.SeedSampleData),
		Records:      performance.NewService(ns, cfg.SimulatedLatency),
		Idempotency:  middleware.NewIdempotencyStore(adapter, cfg.StorageNamespace),
	}
	app.Sessions = auth.NewService(app.Employees, cfg.JWTSecret, cfg.SessionTTL, cfg.AdminPasscodeHash)
	app.Reviews = review.NewService(review.Deps{
		Employees:    app.Employees,
		Quarters:     app.Quarters,
		Qualitative:  app.Qualitative,
		Quantitative: app.Quantitative,
		Records:      app.Records,
		Mailer:       app.Mailer,
		Generator:    feedbackgen.New(cfg),
		Jobs:         runner,
		Recorder:     collector,
	}, review.Options{
		EmailFrom:       cfg.EmailFrom,
		EmailFromName:   cfg.EmailFromName,
		FeedbackBaseURL: cfg.FeedbackBaseURL,
		AutosaveQuiet:   cfg.AutosaveQuietPeriod,
	})
	app.Tables = storage.NewRegistry(
		app.Employees.Table(),
		app.Quarters.Table(),
		app.Qualitative.Table(),
		app.Quantitative.Table(),
		app.Records.Table(),
	)
	app.Router = newRouter(app)

	slog.Info("app initialized",
		"storage", cfg.StorageDriver,
		"namespace", cfg.StorageNamespace,
		"encrypted", cipher.Configured(),
		"email", app.Mailer.Name(),
		"generationConfigured", cfg.GenerationConfigured(),
	)
	return app, nil
}

// Start runs the job worker and the quarter rollover until Shutdown.
func (a *App) Start(ctx context.Context) {
	ctx, a.stop = context.WithCancel(ctx)
	a.Jobs.Start(ctx)
	if err := a.rollover(ctx); err != nil {
		slog.Warn("quarter rollover failed", "err", err)
	}
	a.Jobs.Schedule(ctx, jobs.JobQuarterRollover, a.Config.QuarterRolloverInterval, a.rollover)
}

// rollover makes sure the current year has its quarters and one of them
// is active.
func (a *App) rollover(ctx context.Context) error {
	_, err := a.Quarters.EnsureYear(ctx, time.Now().UTC().Year())
	return err
}

// Shutdown stops background work, runs pending autosaves, flushes every
// table and closes storage.
func (a *App) Shutdown(ctx context.Context) error {
	if a.stop != nil {
		a.stop()
	}
	a.Jobs.Shutdown(ctx)

	var errs []error
	flushers := []interface{ Flush(context.Context) error }{
		a.Employees.Table(),
		a.Quarters.Table(),
		a.Qualitative.Table(),
		a.Quantitative.Table(),
		a.Records.Table(),
	}
	for _, f := range flushers {
		if err := f.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close releases storage without flushing cached tables. Maintenance
// commands use it so that a reset table is not written back.
func (a *App) Close() error {
	return a.Adapter.Close()
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
