package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"hrunity/internal/domain/auth"
	adminhandler "hrunity/internal/transport/http/handlers/admin"
	authhandler "hrunity/internal/transport/http/handlers/auth"
	employeehandler "hrunity/internal/transport/http/handlers/employees"
	performancehandler "hrunity/internal/transport/http/handlers/performance"
	quarterhandler "hrunity/internal/transport/http/handlers/quarters"
	questionhandler "hrunity/internal/transport/http/handlers/questions"
	reportshandler "hrunity/internal/transport/http/handlers/reports"
	reviewhandler "hrunity/internal/transport/http/handlers/reviews"
	"hrunity/internal/transport/http/middleware"
)

func newRouter(a *App) http.Handler {
	cfg := a.Config
	perms := auth.StaticPermissions{}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(middleware.Recover)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(a.Sessions))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Adapter.Ping(ctx); err != nil {
			http.Error(w, "storage not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(a.Metrics.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(a.Sessions).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)

			employeehandler.NewHandler(a.Employees, perms).RegisterRoutes(r)
			quarterhandler.NewHandler(a.Quarters, perms).RegisterRoutes(r)
			questionhandler.NewHandler(a.Qualitative, a.Quantitative, perms).RegisterRoutes(r)
			performancehandler.NewHandler(a.Records, perms).RegisterRoutes(r)
			reviewhandler.NewHandler(a.Reviews, perms, a.Idempotency).RegisterRoutes(r)
			reportshandler.NewHandler(a.Employees, a.Quarters, a.Records, a.Qualitative, a.Quantitative, perms).RegisterRoutes(r)
			adminhandler.NewHandler(a.Tables, a.Metrics, perms).RegisterRoutes(r)
		})
	})

	if cfg.FrontendDir != "" {
		router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	}
	return router
}

// spaHandler serves the built frontend, answering unknown paths with the
// index page so client-side routes resolve.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
