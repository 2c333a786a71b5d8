package review

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"hrunity/internal/apperr"
	"hrunity/internal/domain/performance"
	"hrunity/internal/platform/feedbackgen"
)

// GenerateFeedback asks the generator for feedback on the qualitative
// questions based on the answered quantitative ones, merges it into the
// answers and stores the draft. Every call, failed or not, is recorded on
// the assessment payload.
func (s *Service) GenerateFeedback(ctx context.Context, employeeID, quarterID string, answers Answers) (GeneratedFeedback, error) {
	unlock := s.lock(employeeID, quarterID)
	defer unlock()

	subj, err := s.resolve(ctx, employeeID, quarterID)
	if err != nil {
		return GeneratedFeedback{}, err
	}
	c, err := s.loadCatalog(ctx)
	if err != nil {
		return GeneratedFeedback{}, err
	}
	answers = cleanAnswers(c, answers)
	if err := validateAnswers(c, answers); err != nil {
		return GeneratedFeedback{}, err
	}
	req := buildRequest(subj, c, answers)
	if len(req.Quantitative) == 0 {
		return GeneratedFeedback{}, feedbackgen.ErrNoScores
	}
	payload, err := s.editablePayload(ctx, employeeID, quarterID)
	if err != nil {
		return GeneratedFeedback{}, err
	}

	provider := s.deps.Generator.Name()
	result, genErr := s.deps.Generator.Generate(ctx, req)
	outcome := GenerationOutcome{Provider: provider, Success: genErr == nil, At: s.now()}
	s.recordGeneration(provider, genErr == nil)

	if genErr != nil {
		slog.Warn("feedback generation failed", "employeeId", employeeID, "quarterId", quarterID, "provider", provider, "err", genErr)
		outcome.Error = genErr.Error()
	} else {
		merged := make(Answers, len(answers)+len(result.Feedback))
		for k, v := range answers {
			merged[k] = v
		}
		for id, text := range result.Feedback {
			merged[QualitativeKey(id)] = text
		}
		answers = merged
		payload.AISummary = result.Summary
	}

	payload.AIGenerations = append(payload.AIGenerations, outcome)
	if n := len(payload.AIGenerations); n > maxGenerationHistory {
		payload.AIGenerations = payload.AIGenerations[n-maxGenerationHistory:]
	}
	s.fillPayload(&payload, subj, c, answers)
	payload.AutoSaved = false
	payload.LastSavedAt = s.now()

	data, err := encodePayload(payload)
	if err != nil {
		return GeneratedFeedback{}, err
	}
	if _, err := s.deps.Records.Upsert(ctx, employeeID, quarterID, performance.TypeSelfAssessment, performance.Patch{Status: statusPtr(performance.StatusInProgress), Data: data}); err != nil {
		return GeneratedFeedback{}, err
	}

	if genErr != nil {
		if errors.Is(genErr, apperr.ErrExternalService) {
			return GeneratedFeedback{}, genErr
		}
		return GeneratedFeedback{}, apperr.External(provider, genErr)
	}
	return GeneratedFeedback{Answers: answers, Feedback: result.Feedback, Summary: result.Summary, Provider: result.Provider}, nil
}

func buildRequest(subj subject, c catalog, answers Answers) feedbackgen.Request {
	req := feedbackgen.Request{
		EmployeeName: subj.employee.Name,
		QuarterName:  subj.quarter.Name,
		QuarterYear:  subj.quarter.Year,
	}
	for _, q := range c.quantitative {
		answer := strings.TrimSpace(answers[QuantitativeKey(q.ID)])
		if answer == "" {
			continue
		}
		req.Quantitative = append(req.Quantitative, feedbackgen.ScoredAnswer{
			QuestionID: q.ID,
			Question:   q.Question,
			Scale:      string(q.Scale),
			Answer:     answer,
		})
	}
	for _, q := range c.qualitative {
		req.Qualitative = append(req.Qualitative, feedbackgen.Prompt{QuestionID: q.ID, Question: q.Question})
	}
	return req
}
