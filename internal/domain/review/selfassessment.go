package review

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"hrunity/internal/apperr"
	"hrunity/internal/domain/performance"
	"hrunity/internal/platform/jobs"
)

// ComputeProgress counts the catalog questions with a non-blank answer.
func computeProgress(c catalog, answers Answers) Progress {
	p := Progress{Total: len(c.qualitative) + len(c.quantitative)}
	for _, q := range c.qualitative {
		if answers.answered(QualitativeKey(q.ID)) {
			p.Answered++
		}
	}
	for _, q := range c.quantitative {
		if answers.answered(QuantitativeKey(q.ID)) {
			p.Answered++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Answered) * 100 / float64(p.Total)))
	}
	return p
}

// allAnswered reports whether every catalog question has an answer. An
// empty catalog has nothing to submit.
func allAnswered(c catalog, answers Answers) bool {
	p := computeProgress(c, answers)
	return p.Total > 0 && p.Answered == p.Total
}

func (s *Service) Progress(ctx context.Context, answers Answers) (Progress, error) {
	c, err := s.loadCatalog(ctx)
	if err != nil {
		return Progress{}, err
	}
	return computeProgress(c, answers), nil
}

// IsAllAnswered reports whether answers cover every question of the
// current catalog.
func (s *Service) IsAllAnswered(ctx context.Context, answers Answers) (bool, error) {
	c, err := s.loadCatalog(ctx)
	if err != nil {
		return false, err
	}
	return allAnswered(c, answers), nil
}

// SelfAssessment returns the question catalog together with the stored
// answers and status of the employee's self-assessment.
func (s *Service) SelfAssessment(ctx context.Context, employeeID, quarterID string) (SelfAssessment, error) {
	if _, err := s.resolve(ctx, employeeID, quarterID); err != nil {
		return SelfAssessment{}, err
	}
	c, err := s.loadCatalog(ctx)
	if err != nil {
		return SelfAssessment{}, err
	}
	view := SelfAssessment{
		EmployeeID:   employeeID,
		QuarterID:    quarterID,
		Status:       performance.StatusPending,
		Qualitative:  c.qualitative,
		Quantitative: c.quantitative,
		Answers:      Answers{},
	}
	rec, found, err := s.deps.Records.RecordByType(ctx, employeeID, quarterID, performance.TypeSelfAssessment)
	if err != nil {
		return SelfAssessment{}, err
	}
	if found {
		payload, err := decodePayload[AssessmentPayload](rec)
		if err != nil {
			return SelfAssessment{}, err
		}
		view.RecordID = rec.ID
		view.Status = rec.Status
		if payload.Answers != nil {
			view.Answers = payload.Answers
		}
		view.AISummary = payload.AISummary
		view.SubmittedAt = payload.SubmittedAt
	}
	view.Progress = computeProgress(c, view.Answers)
	return view, nil
}

func (s *Service) SaveDraft(ctx context.Context, employeeID, quarterID string, answers Answers) (performance.Record, error) {
	return s.save(ctx, employeeID, quarterID, answers, saveDraft)
}

func (s *Service) Submit(ctx context.Context, employeeID, quarterID string, answers Answers) (performance.Record, error) {
	return s.save(ctx, employeeID, quarterID, answers, saveSubmit)
}

// ScheduleAutosave stores answers as a draft once no further edit for the
// same employee and quarter arrives within the quiet period. Failures of
// the deferred save are logged by the job runner.
func (s *Service) ScheduleAutosave(ctx context.Context, employeeID, quarterID string, answers Answers) error {
	if _, err := s.resolve(ctx, employeeID, quarterID); err != nil {
		return err
	}
	if err := s.ensureEditable(ctx, employeeID, quarterID); err != nil {
		return err
	}
	snapshot := make(Answers, len(answers))
	for k, v := range answers {
		snapshot[k] = v
	}
	s.deps.Jobs.Debounce(jobs.JobAutosave, employeeID+"|"+quarterID, s.opts.AutosaveQuiet, func(ctx context.Context) error {
		_, err := s.save(ctx, employeeID, quarterID, snapshot, saveAutosave)
		return err
	})
	return nil
}

type saveMode int

const (
	saveDraft saveMode = iota
	saveAutosave
	saveSubmit
)

func (s *Service) save(ctx context.Context, employeeID, quarterID string, answers Answers, mode saveMode) (performance.Record, error) {
	unlock := s.lock(employeeID, quarterID)
	defer unlock()

	subj, err := s.resolve(ctx, employeeID, quarterID)
	if err != nil {
		return performance.Record{}, err
	}
	c, err := s.loadCatalog(ctx)
	if err != nil {
		return performance.Record{}, err
	}
	answers = cleanAnswers(c, answers)
	if err := validateAnswers(c, answers); err != nil {
		return performance.Record{}, err
	}
	if mode == saveSubmit && !allAnswered(c, answers) {
		return performance.Record{}, ErrIncompleteAnswers
	}

	payload, err := s.editablePayload(ctx, employeeID, quarterID)
	if err != nil {
		return performance.Record{}, err
	}
	now := s.now()
	s.fillPayload(&payload, subj, c, answers)
	payload.AutoSaved = mode == saveAutosave
	payload.LastSavedAt = now

	status := performance.StatusInProgress
	if mode == saveSubmit {
		status = performance.StatusCompleted
		payload.SubmittedAt = &now
	}
	data, err := encodePayload(payload)
	if err != nil {
		return performance.Record{}, err
	}
	rec, err := s.deps.Records.Upsert(ctx, employeeID, quarterID, performance.TypeSelfAssessment, performance.Patch{Status: statusPtr(status), Data: data})
	if err != nil {
		return performance.Record{}, err
	}
	slog.Info("self-assessment saved", "employeeId", employeeID, "quarterId", quarterID, "status", status, "answered", payload.AnsweredQuestions, "autoSaved", payload.AutoSaved)
	return rec, nil
}

// editablePayload loads the stored assessment payload, failing when the
// assessment was already submitted.
func (s *Service) editablePayload(ctx context.Context, employeeID, quarterID string) (AssessmentPayload, error) {
	rec, found, err := s.deps.Records.RecordByType(ctx, employeeID, quarterID, performance.TypeSelfAssessment)
	if err != nil {
		return AssessmentPayload{}, err
	}
	if !found {
		return AssessmentPayload{SessionID: uuid.NewString()}, nil
	}
	if rec.Status == performance.StatusCompleted {
		return AssessmentPayload{}, ErrAssessmentCompleted
	}
	payload, err := decodePayload[AssessmentPayload](rec)
	if err != nil {
		return AssessmentPayload{}, err
	}
	if payload.SessionID == "" {
		payload.SessionID = uuid.NewString()
	}
	return payload, nil
}

func (s *Service) ensureEditable(ctx context.Context, employeeID, quarterID string) error {
	_, err := s.editablePayload(ctx, employeeID, quarterID)
	return err
}

func (s *Service) fillPayload(p *AssessmentPayload, subj subject, c catalog, answers Answers) {
	progress := computeProgress(c, answers)
	p.Answers = answers
	p.EmployeeID = subj.employee.EmployeeID
	p.EmployeeName = subj.employee.Name
	p.QuarterID = subj.quarter.ID
	p.QuarterName = subj.quarter.Name
	p.QuarterYear = subj.quarter.Year
	p.TotalQuestions = progress.Total
	p.AnsweredQuestions = progress.Answered
	p.QualitativeCount = len(c.qualitative)
	p.QuantitativeCount = len(c.quantitative)
	p.CompletionPercentage = progress.Percentage
	p.Version = PayloadVersion
}

// cleanAnswers trims keys and drops those naming no current catalog
// question, such as answers to a question deleted after they were saved.
func cleanAnswers(c catalog, answers Answers) Answers {
	known := make(map[string]struct{}, len(c.qualitative)+len(c.quantitative))
	for _, q := range c.qualitative {
		known[QualitativeKey(q.ID)] = struct{}{}
	}
	for _, q := range c.quantitative {
		known[QuantitativeKey(q.ID)] = struct{}{}
	}
	out := make(Answers, len(answers))
	for k, v := range answers {
		k = strings.TrimSpace(k)
		if _, ok := known[k]; ok {
			out[k] = v
		}
	}
	return out
}

// validateAnswers rejects quantitative answers outside the question's
// scale. Blank answers are allowed in drafts.
func validateAnswers(c catalog, answers Answers) error {
	verr := &apperr.ValidationError{}
	for _, q := range c.quantitative {
		key := QuantitativeKey(q.ID)
		value := strings.TrimSpace(answers[key])
		if value != "" && !q.Scale.Accepts(value) {
			verr.Issues = append(verr.Issues, apperr.FieldIssue{Field: "answers." + key, Reason: "is outside the question scale"})
		}
	}
	if len(verr.Issues) > 0 {
		return verr
	}
	return nil
}
