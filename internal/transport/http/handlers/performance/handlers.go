package performancehandler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrunity/internal/domain/auth"
	"hrunity/internal/domain/performance"
	"hrunity/internal/transport/http/api"
	"hrunity/internal/transport/http/middleware"
	"hrunity/internal/transport/http/shared"
)

type Handler struct {
	Service *performance.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *performance.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

type createRecordRequest struct {
	EmployeeID string             `json:"employeeId"`
	QuarterID  string             `json:"quarterId"`
	Type       performance.Type   `json:"type"`
	Status     performance.Status `json:"status"`
	Data       json.RawMessage    `json:"data"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/records", h.handleListRecords)
		r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Post("/records", h.handleCreateRecord)
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/records/{recordID}", h.handleGetRecord)
		r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Patch("/records/{recordID}", h.handleUpdateRecord)
		r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Delete("/records/{recordID}", h.handleDeleteRecord)
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/stats", h.handleStats)
	})
}

// authorize answers 403 and returns false unless the caller may see the
// records of employeeID.
func authorize(w http.ResponseWriter, r *http.Request, employeeID string) bool {
	principal, _ := middleware.GetPrincipal(r.Context())
	if err := auth.Authorize(principal, employeeID); err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func ownerQuery(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	quarterID := strings.TrimSpace(r.URL.Query().Get("quarterId"))
	v := shared.NewValidator()
	v.Required("employeeId", employeeID, "is required")
	v.Required("quarterId", quarterID, "is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return "", "", false
	}
	return employeeID, quarterID, true
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, quarterID, ok := ownerQuery(w, r)
	if !ok || !authorize(w, r, employeeID) {
		return
	}
	records, err := h.Service.RecordsFor(r.Context(), employeeID, quarterID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	record, err := h.Service.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	if !authorize(w, r, record.EmployeeID) {
		return
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload createRecordRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	if !authorize(w, r, payload.EmployeeID) {
		return
	}
	record, err := h.Service.Create(r.Context(), performance.Record{
		EmployeeID: payload.EmployeeID,
		QuarterID:  payload.QuarterID,
		Type:       payload.Type,
		Status:     payload.Status,
		Data:       payload.Data,
	})
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Created(w, record, requestID)
}

func (h *Handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	recordID := chi.URLParam(r, "recordID")
	current, err := h.Service.Get(r.Context(), recordID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	if !authorize(w, r, current.EmployeeID) {
		return
	}
	var patch performance.Patch
	if !shared.DecodeJSON(w, r, &patch, requestID) {
		return
	}
	record, err := h.Service.Update(r.Context(), recordID, patch)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	recordID := chi.URLParam(r, "recordID")
	current, err := h.Service.Get(r.Context(), recordID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	if !authorize(w, r, current.EmployeeID) {
		return
	}
	if err := h.Service.Delete(r.Context(), recordID); err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, requestID)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, quarterID, ok := ownerQuery(w, r)
	if !ok || !authorize(w, r, employeeID) {
		return
	}
	stats, err := h.Service.Stats(r.Context(), employeeID, quarterID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, stats, requestID)
}
