package reviewhandler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrunity/internal/domain/auth"
	"hrunity/internal/domain/performance"
	"hrunity/internal/domain/review"
	"hrunity/internal/transport/http/api"
	"hrunity/internal/transport/http/middleware"
	"hrunity/internal/transport/http/shared"
)

type Handler struct {
	Service     *review.Service
	Perms       middleware.PermissionStore
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *review.Service, perms middleware.PermissionStore, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Idempotency: idem}
}

type answersRequest struct {
	Answers review.Answers `json:"answers"`
}

type feedbackRequestsRequest struct {
	ColleagueIDs []string `json:"colleagueIds"`
	Message      string   `json:"message"`
}

type summaryStatusRequest struct {
	Status performance.Status `json:"status"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermReviewsRead, h.Perms)
	write := middleware.RequirePermission(auth.PermReviewsWrite, h.Perms)

	r.Route("/reviews/{employeeID}/{quarterID}", func(r chi.Router) {
		r.Use(authorizeSubject)
		r.With(read).Get("/self-assessment", h.handleGetSelfAssessment)
		r.With(write).Put("/self-assessment", h.handleSaveDraft)
		r.With(write).Post("/self-assessment/autosave", h.handleAutosave)
		r.With(write).Post("/self-assessment/submit", h.handleSubmit)
		r.With(read).Post("/progress", h.handleProgress)
		r.With(write).Post("/ai-feedback", h.handleGenerateFeedback)
		r.With(write, middleware.Idempotent(h.Idempotency)).Post("/feedback-requests", h.handleRequestFeedback)
		r.With(read).Get("/feedback-url", h.handleFeedbackURL)
		r.With(write).Post("/feedback-summary/advance", h.handleAdvanceSummary)
		r.With(write).Put("/feedback-summary", h.handleSetSummary)
		r.With(read).Get("/report.pdf", h.handleReport)
	})
}

// authorizeSubject rejects callers that may not act for the employee in
// the path.
func authorizeSubject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.GetPrincipal(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
			return
		}
		if err := auth.Authorize(principal, chi.URLParam(r, "employeeID")); err != nil {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func subject(r *http.Request) (string, string) {
	return chi.URLParam(r, "employeeID"), chi.URLParam(r, "quarterID")
}

func (h *Handler) handleGetSelfAssessment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, quarterID := subject(r)
	view, err := h.Service.SelfAssessment(r.Context(), employeeID, quarterID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, view, requestID)
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload answersRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	employeeID, quarterID := subject(r)
	record, err := h.Service.SaveDraft(r.Context(), employeeID, quarterID, payload.Answers)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleAutosave(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload answersRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	employeeID, quarterID := subject(r)
	if err := h.Service.ScheduleAutosave(r.Context(), employeeID, quarterID, payload.Answers); err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.WriteJSON(w, http.StatusAccepted, api.Envelope{Success: true, Data: map[string]bool{"scheduled": true}, RequestID: requestID})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload answersRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	employeeID, quarterID := subject(r)
	record, err := h.Service.Submit(r.Context(), employeeID, quarterID, payload.Answers)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload answersRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	progress, err := h.Service.Progress(r.Context(), payload.Answers)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	complete, err := h.Service.IsAllAnswered(r.Context(), payload.Answers)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"progress": progress, "allAnswered": complete}, requestID)
}

func (h *Handler) handleGenerateFeedback(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload answersRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	employeeID, quarterID := subject(r)
	generated, err := h.Service.GenerateFeedback(r.Context(), employeeID, quarterID, payload.Answers)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, generated, requestID)
}

func (h *Handler) handleRequestFeedback(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload feedbackRequestsRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	employeeID, quarterID := subject(r)
	batch, record, err := h.Service.RequestFeedback(r.Context(), employeeID, quarterID, payload.ColleagueIDs, payload.Message)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Created(w, map[string]any{"batch": batch, "record": record}, requestID)
}

func (h *Handler) handleFeedbackURL(w http.ResponseWriter, r *http.Request) {
	employeeID, quarterID := subject(r)
	api.Success(w, map[string]string{"url": h.Service.FeedbackURL(employeeID, quarterID)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAdvanceSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, quarterID := subject(r)
	record, err := h.Service.AdvanceFeedbackSummary(r.Context(), employeeID, quarterID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleSetSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload summaryStatusRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	employeeID, quarterID := subject(r)
	record, err := h.Service.SetFeedbackSummaryStatus(r.Context(), employeeID, quarterID, payload.Status)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, quarterID := subject(r)
	var buf bytes.Buffer
	if err := h.Service.Report(r.Context(), employeeID, quarterID, &buf); err != nil {
		api.FailError(w, err, requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "review-"+employeeID+"-"+quarterID+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
