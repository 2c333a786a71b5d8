package adminhandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrunity/internal/domain/auth"
	"hrunity/internal/platform/storage"
	"hrunity/internal/transport/http/api"
	"hrunity/internal/transport/http/middleware"
	"hrunity/internal/transport/http/shared"
)

// Snapshotter exposes the process counters.
type Snapshotter interface {
	Snapshot() map[string]any
}

type Handler struct {
	Tables  *storage.Registry
	Metrics Snapshotter
	Perms   middleware.PermissionStore
}

func NewHandler(tables *storage.Registry, metrics Snapshotter, perms middleware.PermissionStore) *Handler {
	return &Handler{Tables: tables, Metrics: metrics, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAdminStorage, h.Perms)).Get("/storage/tables", h.handleListTables)
		r.With(middleware.RequirePermission(auth.PermAdminStorage, h.Perms)).Post("/storage/reset", h.handleReset)
		r.With(middleware.RequirePermission(auth.PermAdminStorage, h.Perms)).Post("/storage/seed", h.handleSeed)
		r.With(middleware.RequirePermission(auth.PermMetricsRead, h.Perms)).Get("/metrics", h.handleMetrics)
	})
}

func (h *Handler) handleListTables(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Tables.Names(), middleware.GetRequestID(r.Context()))
}

// handleReset drops the tables named in the body, or every table when the
// body names none.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload struct {
		Tables []string `json:"tables"`
	}
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	reset, err := h.Tables.Reset(r.Context(), payload.Tables...)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	slog.Warn("storage reset", "tables", reset, "requestId", requestID)
	api.Success(w, map[string]any{"reset": reset}, requestID)
}

func (h *Handler) handleSeed(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	seeded, err := h.Tables.Seed(r.Context())
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	slog.Warn("storage reseeded", "tables", seeded, "requestId", requestID)
	api.Success(w, map[string]any{"seeded": seeded}, requestID)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
}
