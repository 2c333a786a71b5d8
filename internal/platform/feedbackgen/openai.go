package feedbackgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"hrunity/internal/apperr"
)

const (
	maxTokens    = 2000
	temperature  = 0.7
	systemPrompt = "You are a professional HR consultant and performance coach. Provide constructive, detailed and actionable feedback based on quantitative performance data. Be supportive and specific, and focus on development opportunities."
)

var _ Generator = (*OpenAI)(nil)

// CompletionsService is the part of the OpenAI client used here.
type CompletionsService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type OpenAI struct {
	completions CompletionsService
	model       string
}

func NewOpenAI(apiKey, model string) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{completions: client.Chat.Completions, model: model}
}

func NewOpenAIWithService(completions CompletionsService, model string) *OpenAI {
	return &OpenAI{completions: completions, model: model}
}

func (o *OpenAI) Name() string {
	return "openai"
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (Result, error) {
	if len(req.Quantitative) == 0 {
		return Result{}, ErrNoScores
	}
	resp, err := o.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(req)),
		}),
		Model:       openai.F(openai.ChatModel(o.model)),
		MaxTokens:   openai.F(int64(maxTokens)),
		Temperature: openai.F(temperature),
	})
	if err != nil {
		return Result{}, apperr.External(o.Name(), fmt.Errorf("chat completion failed: %w", err))
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Result{}, apperr.External(o.Name(), errors.New("chat completion returned no content"))
	}

	feedback, summary := parseReply(resp.Choices[0].Message.Content, req.Qualitative)
	return Result{Feedback: feedback, Summary: summary, Provider: o.Name()}, nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please provide detailed, constructive feedback for %s for %s %d based on their quantitative self-assessment responses.\n\n", req.EmployeeName, req.QuarterName, req.QuarterYear)
	b.WriteString("QUANTITATIVE ASSESSMENT RESULTS:\n")
	for _, answer := range req.Quantitative {
		fmt.Fprintf(&b, "- %s: %s (Scale: %s)\n", answer.Question, answer.Answer, answer.Scale)
	}
	b.WriteString("\nQUALITATIVE QUESTIONS TO ADDRESS:\n")
	for i, prompt := range req.Qualitative {
		fmt.Fprintf(&b, "%d. %s\n", i+1, prompt.Question)
	}
	b.WriteString(`
Provide specific, actionable feedback for each qualitative question based on the quantitative data. Consider patterns in the responses, strengths shown by high scores, development areas shown by low scores, concrete recommendations and recognition of achievements.

Format your response as JSON with this structure:
{
  "feedback": {
    "question_1": "Feedback for the first question",
    "question_2": "Feedback for the second question"
  },
  "summary": "Overall assessment summary and key recommendations"
}`)
	return b.String()
}
