package questionhandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrunity/internal/domain/auth"
	"hrunity/internal/domain/questions"
	"hrunity/internal/transport/http/api"
	"hrunity/internal/transport/http/middleware"
	"hrunity/internal/transport/http/shared"
)

type Handler struct {
	Qualitative  *questions.QualitativeService
	Quantitative *questions.QuantitativeService
	Perms        middleware.PermissionStore
}

func NewHandler(qualitative *questions.QualitativeService, quantitative *questions.QuantitativeService, perms middleware.PermissionStore) *Handler {
	return &Handler{Qualitative: qualitative, Quantitative: quantitative, Perms: perms}
}

type questionRequest struct {
	Question string          `json:"question"`
	Scale    questions.Scale `json:"scale"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermQuestionsRead, h.Perms)
	write := middleware.RequirePermission(auth.PermQuestionsWrite, h.Perms)

	r.Route("/questions/qualitative", func(r chi.Router) {
		r.With(read).Get("/", h.handleListQualitative)
		r.With(write).Post("/", h.handleCreateQualitative)
		r.With(read).Get("/stats", h.handleQualitativeStats)
		r.With(read).Get("/{questionID}", h.handleGetQualitative)
		r.With(write).Put("/{questionID}", h.handleUpdateQualitative)
		r.With(write).Delete("/{questionID}", h.handleDeleteQualitative)
	})
	r.Route("/questions/quantitative", func(r chi.Router) {
		r.With(read).Get("/", h.handleListQuantitative)
		r.With(write).Post("/", h.handleCreateQuantitative)
		r.With(read).Get("/stats", h.handleQuantitativeStats)
		r.With(read).Get("/{questionID}", h.handleGetQuantitative)
		r.With(write).Put("/{questionID}", h.handleUpdateQuantitative)
		r.With(write).Delete("/{questionID}", h.handleDeleteQuantitative)
	})
}

func scaleNames() []string {
	out := make([]string, 0, len(questions.Scales))
	for _, s := range questions.Scales {
		out = append(out, string(s))
	}
	return out
}

func (h *Handler) handleListQualitative(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var (
		rows []questions.Qualitative
		err  error
	)
	if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
		rows, err = h.Qualitative.Search(r.Context(), term)
	} else {
		rows, err = h.Qualitative.List(r.Context())
	}
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, rows, requestID)
}

func (h *Handler) handleGetQualitative(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q, err := h.Qualitative.Get(r.Context(), chi.URLParam(r, "questionID"))
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, q, requestID)
}

func (h *Handler) handleCreateQualitative(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload questionRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	q, err := h.Qualitative.Create(r.Context(), payload.Question)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Created(w, q, requestID)
}

func (h *Handler) handleUpdateQualitative(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload questionRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	q, err := h.Qualitative.Update(r.Context(), chi.URLParam(r, "questionID"), payload.Question)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, q, requestID)
}

func (h *Handler) handleDeleteQualitative(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Qualitative.Delete(r.Context(), chi.URLParam(r, "questionID")); err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, requestID)
}

func (h *Handler) handleQualitativeStats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	stats, err := h.Qualitative.Stats(r.Context())
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, stats, requestID)
}

// handleListQuantitative lists quantitative questions, optionally filtered
// by ?scale= or searched by ?q=.
func (h *Handler) handleListQuantitative(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	scale := strings.TrimSpace(r.URL.Query().Get("scale"))
	term := strings.TrimSpace(r.URL.Query().Get("q"))

	v := shared.NewValidator()
	if scale != "" {
		v.Enum("scale", scale, scaleNames(), "must be one of "+strings.Join(scaleNames(), ", "))
	}
	if v.Reject(w, requestID) {
		return
	}

	var (
		rows []questions.Quantitative
		err  error
	)
	switch {
	case scale != "":
		rows, err = h.Quantitative.ByScale(r.Context(), questions.Scale(scale))
	case term != "":
		rows, err = h.Quantitative.Search(r.Context(), term)
	default:
		rows, err = h.Quantitative.List(r.Context())
	}
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, rows, requestID)
}

func (h *Handler) handleGetQuantitative(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q, err := h.Quantitative.Get(r.Context(), chi.URLParam(r, "questionID"))
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, q, requestID)
}

func (h *Handler) handleCreateQuantitative(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload questionRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	q, err := h.Quantitative.Create(r.Context(), payload.Question, payload.Scale)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Created(w, q, requestID)
}

func (h *Handler) handleUpdateQuantitative(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload questionRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	q, err := h.Quantitative.Update(r.Context(), chi.URLParam(r, "questionID"), payload.Question, payload.Scale)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, q, requestID)
}

func (h *Handler) handleDeleteQuantitative(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Quantitative.Delete(r.Context(), chi.URLParam(r, "questionID")); err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, requestID)
}

func (h *Handler) handleQuantitativeStats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	stats, err := h.Quantitative.Stats(r.Context())
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, stats, requestID)
}
