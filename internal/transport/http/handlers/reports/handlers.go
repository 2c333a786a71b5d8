package reportshandler

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrunity/internal/domain/auth"
	"hrunity/internal/domain/employee"
	"hrunity/internal/domain/performance"
	"hrunity/internal/domain/quarter"
	"hrunity/internal/domain/questions"
	"hrunity/internal/transport/http/api"
	"hrunity/internal/transport/http/middleware"
)

type Handler struct {
	Employees    *employee.Service
	Quarters     *quarter.Service
	Records      *performance.Service
	Qualitative  *questions.QualitativeService
	Quantitative *questions.QuantitativeService
	Perms        middleware.PermissionStore
}

func NewHandler(employees *employee.Service, quarters *quarter.Service, records *performance.Service, qualitative *questions.QualitativeService, quantitative *questions.QuantitativeService, perms middleware.PermissionStore) *Handler {
	return &Handler{
		Employees:    employees,
		Quarters:     quarters,
		Records:      records,
		Qualitative:  qualitative,
		Quantitative: quantitative,
		Perms:        perms,
	}
}

type teamRow struct {
	EmployeeID      string             `json:"employeeId"`
	Name            string             `json:"name"`
	Department      string             `json:"department"`
	SelfAssessment  performance.Status `json:"selfAssessment"`
	RequestFeedback performance.Status `json:"requestFeedback"`
	FeedbackSummary performance.Status `json:"feedbackSummary"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/dashboard/employee", h.handleEmployeeDashboard)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/dashboard/team", h.handleTeamDashboard)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/dashboard/team/export", h.handleTeamExport)
	})
}

// quarterFor resolves ?quarterId= or falls back to the active quarter.
func (h *Handler) quarterFor(r *http.Request) (quarter.Quarter, error) {
	if id := strings.TrimSpace(r.URL.Query().Get("quarterId")); id != "" {
		return h.Quarters.Get(r.Context(), id)
	}
	return h.Quarters.Active(r.Context())
}

func (h *Handler) handleEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())
	if principal.EmployeeID == "" {
		api.Fail(w, http.StatusForbidden, "forbidden", "employee session required", requestID)
		return
	}

	q, err := h.quarterFor(r)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	emp, err := h.Employees.Get(r.Context(), principal.EmployeeID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	stats, err := h.Records.Stats(r.Context(), emp.EmployeeID, q.ID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{
		"employee": emp,
		"quarter":  q,
		"records":  stats,
	}, requestID)
}

func canSeeTeam(w http.ResponseWriter, r *http.Request) bool {
	principal, _ := middleware.GetPrincipal(r.Context())
	if principal.Role != auth.RoleManager && principal.Role != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// teamRows returns the review status of every employee in quarterID.
func (h *Handler) teamRows(ctx context.Context, quarterID string) ([]teamRow, error) {
	employees, err := h.Employees.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]teamRow, 0, len(employees))
	for _, e := range employees {
		stats, err := h.Records.Stats(ctx, e.EmployeeID, quarterID)
		if err != nil {
			slog.Warn("team dashboard record stats failed", "employeeId", e.EmployeeID, "err", err)
			continue
		}
		rows = append(rows, teamRow{
			EmployeeID:      e.EmployeeID,
			Name:            e.Name,
			Department:      e.Department,
			SelfAssessment:  statusOf(stats.SelfAssessment),
			RequestFeedback: statusOf(stats.RequestFeedback),
			FeedbackSummary: statusOf(stats.FeedbackSummary),
		})
	}
	return rows, nil
}

func (h *Handler) handleTeamDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if !canSeeTeam(w, r) {
		return
	}

	q, err := h.quarterFor(r)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	rows, err := h.teamRows(r.Context(), q.ID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	headcount, err := h.Employees.Stats(r.Context())
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	qualitative, err := h.Qualitative.Stats(r.Context())
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	quantitative, err := h.Quantitative.Stats(r.Context())
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}

	completed := 0
	for _, row := range rows {
		if row.SelfAssessment == performance.StatusCompleted {
			completed++
		}
	}
	api.Success(w, map[string]any{
		"quarter":                 q,
		"headcount":               headcount,
		"completedSelfAssessment": completed,
		"employees":               rows,
		"qualitativeQuestions":    qualitative,
		"quantitativeQuestions":   quantitative,
	}, requestID)
}

func (h *Handler) handleTeamExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if !canSeeTeam(w, r) {
		return
	}
	q, err := h.quarterFor(r)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	rows, err := h.teamRows(r.Context(), q.ID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=review-status-"+q.ID+".csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"employee_id", "name", "department", "self_assessment", "request_feedback", "feedback_summary"}); err != nil {
		slog.Warn("team export header failed", "err", err)
	}
	for _, row := range rows {
		if err := writer.Write([]string{row.EmployeeID, row.Name, row.Department, string(row.SelfAssessment), string(row.RequestFeedback), string(row.FeedbackSummary)}); err != nil {
			slog.Warn("team export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("team export flush failed", "err", err)
	}
}

func statusOf(rec *performance.Record) performance.Status {
	if rec == nil {
		return performance.StatusPending
	}
	return rec.Status
}
