package review

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"hrunity/internal/domain/employee"
	"hrunity/internal/domain/performance"
	"hrunity/internal/platform/email"
)

// FeedbackURL is the link colleagues follow to leave feedback.
func (s *Service) FeedbackURL(employeeID, quarterID string) string {
	return strings.TrimRight(s.opts.FeedbackBaseURL, "/") + "/feedback/" + employeeID + "/" + quarterID
}

// RequestFeedback emails each colleague a feedback request, one after the
// other, and stores the outcome of every dispatch. The record is
// in_progress when at least one email went out and failed otherwise.
// When ctx ends mid-batch the remaining colleagues are recorded as failed,
// the outcomes are still stored and the context error is returned.
func (s *Service) RequestFeedback(ctx context.Context, employeeID, quarterID string, colleagueIDs []string, message string) (FeedbackRequestPayload, performance.Record, error) {
	ids := uniqueIDs(colleagueIDs)
	if len(ids) == 0 {
		return FeedbackRequestPayload{}, performance.Record{}, ErrNoColleagues
	}
	if slices.Contains(ids, employeeID) {
		return FeedbackRequestPayload{}, performance.Record{}, ErrSelfFeedback
	}

	unlock := s.lock(employeeID, quarterID)
	defer unlock()

	subj, err := s.resolve(ctx, employeeID, quarterID)
	if err != nil {
		return FeedbackRequestPayload{}, performance.Record{}, err
	}
	colleagues := make([]employee.Employee, 0, len(ids))
	for _, id := range ids {
		c, err := s.deps.Employees.Get(ctx, id)
		if err != nil {
			return FeedbackRequestPayload{}, performance.Record{}, err
		}
		colleagues = append(colleagues, c)
	}

	payload := FeedbackRequestPayload{
		Message:     strings.TrimSpace(message),
		FeedbackURL: s.FeedbackURL(employeeID, quarterID),
		RequestedAt: s.now(),
	}
	for _, c := range colleagues {
		var outcome FeedbackOutcome
		if err := ctx.Err(); err != nil {
			outcome = s.skipped(c, err)
		} else {
			outcome = s.dispatch(ctx, subj, c, payload)
		}
		if outcome.Status == OutcomeSent {
			payload.SentCount++
		} else {
			payload.FailedCount++
		}
		payload.Requests = append(payload.Requests, outcome)
	}

	status := performance.StatusFailed
	if payload.SentCount > 0 {
		status = performance.StatusInProgress
	}
	data, err := encodePayload(payload)
	if err != nil {
		return FeedbackRequestPayload{}, performance.Record{}, err
	}
	rec, err := s.deps.Records.Upsert(context.WithoutCancel(ctx), employeeID, quarterID, performance.TypeRequestFeedback, performance.Patch{Status: statusPtr(status), Data: data})
	if err != nil {
		return FeedbackRequestPayload{}, performance.Record{}, err
	}
	slog.Info("feedback requested", "employeeId", employeeID, "quarterId", quarterID, "sent", payload.SentCount, "failed", payload.FailedCount)
	if err := ctx.Err(); err != nil {
		return payload, rec, err
	}
	return payload, rec, nil
}

// skipped is the outcome of a colleague never emailed because the batch
// was abandoned.
func (s *Service) skipped(colleague employee.Employee, cause error) FeedbackOutcome {
	s.recordEmail(s.deps.Mailer.Name(), false)
	return FeedbackOutcome{
		ColleagueID:    colleague.EmployeeID,
		ColleagueName:  colleague.Name,
		ColleagueEmail: colleague.EmployeeEmail,
		Status:         OutcomeFailed,
		RequestedAt:    s.now(),
		Provider:       s.deps.Mailer.Name(),
		EmailError:     cause.Error(),
	}
}

func (s *Service) dispatch(ctx context.Context, subj subject, colleague employee.Employee, batch FeedbackRequestPayload) FeedbackOutcome {
	outcome := FeedbackOutcome{
		ColleagueID:    colleague.EmployeeID,
		ColleagueName:  colleague.Name,
		ColleagueEmail: colleague.EmployeeEmail,
		Status:         OutcomeFailed,
		RequestedAt:    s.now(),
		Provider:       s.deps.Mailer.Name(),
	}
	if strings.TrimSpace(colleague.EmployeeEmail) == "" {
		outcome.EmailError = email.ErrNoRecipient.Error()
		s.recordEmail(outcome.Provider, false)
		return outcome
	}

	msg, err := email.RenderFeedbackRequest(email.FeedbackRequest{
		ToEmail:     colleague.EmployeeEmail,
		ToName:      colleague.Name,
		FromName:    subj.employee.Name,
		FromEmail:   subj.employee.EmployeeEmail,
		QuarterName: subj.quarter.Name,
		QuarterYear: subj.quarter.Year,
		Message:     batch.Message,
		FeedbackURL: batch.FeedbackURL,
	})
	if err != nil {
		outcome.EmailError = err.Error()
		s.recordEmail(outcome.Provider, false)
		return outcome
	}
	msg.From = s.opts.EmailFrom
	msg.FromName = s.opts.EmailFromName

	res, err := s.deps.Mailer.Send(ctx, msg)
	if err != nil {
		slog.Warn("feedback request email failed", "colleagueId", colleague.EmployeeID, "provider", outcome.Provider, "err", err)
		outcome.EmailError = err.Error()
		s.recordEmail(outcome.Provider, false)
		return outcome
	}
	outcome.Status = OutcomeSent
	outcome.Provider = res.Provider
	outcome.MessageID = res.MessageID
	outcome.EmailStatus = res.Status
	s.recordEmail(res.Provider, true)
	return outcome
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
