package authhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrunity/internal/domain/auth"
	"hrunity/internal/transport/http/api"
	"hrunity/internal/transport/http/middleware"
	"hrunity/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

type sessionRequest struct {
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId"`
	Passcode   string `json:"passcode"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.HandleSelectRole)
	r.With(middleware.RequireSession).Get("/session", h.HandleCurrent)
}

// HandleSelectRole starts a session for the chosen role.
func (h *Handler) HandleSelectRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload sessionRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	v := shared.NewValidator()
	v.Required("role", payload.Role, "is required")
	v.Enum("role", payload.Role, []string{auth.RoleEmployee, auth.RoleManager, auth.RoleAdmin}, "must be one of employee, manager, admin")
	if v.Reject(w, requestID) {
		return
	}

	session, err := h.Service.SelectRole(r.Context(), payload.Role, payload.EmployeeID, payload.Passcode)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Created(w, session, requestID)
}

func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())
	api.Success(w, map[string]any{
		"role":        principal.Role,
		"employeeId":  principal.EmployeeID,
		"sessionId":   principal.SessionID,
		"permissions": auth.RolePermissions[principal.Role],
	}, middleware.GetRequestID(r.Context()))
}
