package quarterhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrunity/internal/domain/auth"
	"hrunity/internal/domain/quarter"
	"hrunity/internal/transport/http/api"
	"hrunity/internal/transport/http/middleware"
	"hrunity/internal/transport/http/shared"
)

type Handler struct {
	Service *quarter.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *quarter.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/quarters", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermQuartersRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermQuartersRead, h.Perms)).Get("/active", h.handleActive)
		r.With(middleware.RequirePermission(auth.PermQuartersRead, h.Perms)).Get("/{quarterID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermQuartersManage, h.Perms)).Put("/{quarterID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermQuartersManage, h.Perms)).Post("/{quarterID}/activate", h.handleActivate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	rows, err := h.Service.List(r.Context())
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, rows, requestID)
}

func (h *Handler) handleActive(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q, err := h.Service.Active(r.Context())
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, q, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q, err := h.Service.Get(r.Context(), chi.URLParam(r, "quarterID"))
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, q, requestID)
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q, err := h.Service.Activate(r.Context(), chi.URLParam(r, "quarterID"))
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, q, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	v := shared.NewValidator()
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, requestID) {
		return
	}
	q, err := h.Service.Update(r.Context(), chi.URLParam(r, "quarterID"), start, end)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, q, requestID)
}
