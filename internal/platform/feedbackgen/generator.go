// Package feedbackgen turns quantitative self-assessment scores into
// written feedback for the qualitative questions.
package feedbackgen

import (
	"context"

	"hrunity/internal/apperr"
	"hrunity/internal/platform/config"
)

const DefaultSummary = "AI-generated feedback based on your quantitative responses."

var ErrNoScores = apperr.New(apperr.ErrValidation, "at least one quantitative question must be answered before generating feedback")

type ScoredAnswer struct {
	QuestionID string
	Question   string
	Scale      string
	Answer     string
}

type Prompt struct {
	QuestionID string
	Question   string
}

type Request struct {
	EmployeeName string
	QuarterName  string
	QuarterYear  int
	Quantitative []ScoredAnswer
	Qualitative  []Prompt
}

// Result holds feedback keyed by qualitative question id.
type Result struct {
	Feedback map[string]string
	Summary  string
	Provider string
}

type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (Result, error)
}

// New returns the OpenAI generator when an API key is configured and the
// rule-based generator otherwise.
func New(cfg config.Config) Generator {
	if cfg.GenerationConfigured() {
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	return NewRules()
}
