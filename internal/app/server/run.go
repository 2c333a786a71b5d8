package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"hrunity/internal/platform/config"
)

const shutdownTimeout = 15 * time.Second

// Run serves cfg.Addr until ctx is done, then drains in-flight requests and
// shuts the app down.
func Run(ctx context.Context, cfg config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	app.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "address", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			serveErr <- err
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "err", err)
	}
	if err := app.Shutdown(shutdownCtx); err != nil {
		slog.Error("app shutdown error", "err", err)
	}
	slog.Info("shutdown complete")

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}
