package employeehandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrunity/internal/domain/auth"
	"hrunity/internal/domain/employee"
	"hrunity/internal/transport/http/api"
	"hrunity/internal/transport/http/middleware"
	"hrunity/internal/transport/http/shared"
)

type Handler struct {
	Service *employee.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *employee.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/stats", h.handleStats)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/managers", h.handleManagers)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Delete("/{employeeID}", h.handleDelete)
	})
}

// handleList lists employees filtered by ?q= and ?department=, paginated by
// ?limit= and ?offset=.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var (
		rows []employee.Employee
		err  error
	)
	if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
		rows, err = h.Service.Search(r.Context(), term)
	} else {
		rows, err = h.Service.List(r.Context())
	}
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	if dept := strings.TrimSpace(r.URL.Query().Get("department")); dept != "" {
		filtered := make([]employee.Employee, 0, len(rows))
		for _, e := range rows {
			if strings.EqualFold(e.Department, dept) {
				filtered = append(filtered, e)
			}
		}
		rows = filtered
	}
	api.Success(w, shared.Paginate(rows, shared.ParsePagination(r, 50, 200)), requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, emp, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload employee.Employee
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	created, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var patch employee.Patch
	if !shared.DecodeJSON(w, r, &patch, requestID) {
		return
	}
	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "employeeID"), patch)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "employeeID")); err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, requestID)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, stats, requestID)
}

func (h *Handler) handleManagers(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	managers, err := h.Service.Managers(r.Context())
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, managers, requestID)
}
