package review

import (
	"strings"
	"time"

	"hrunity/internal/domain/performance"
	"hrunity/internal/domain/questions"
)

const (
	PayloadVersion = "1.0"

	OutcomeSent   = "sent"
	OutcomeFailed = "failed"

	maxGenerationHistory = 10
)

// Answers maps qualitative_<id> and quantitative_<id> keys to answers.
type Answers map[string]string

func QualitativeKey(id string) string {
	return "qualitative_" + id
}

func QuantitativeKey(id string) string {
	return "quantitative_" + id
}

func (a Answers) answered(key string) bool {
	return strings.TrimSpace(a[key]) != ""
}

type GenerationOutcome struct {
	Provider string    `json:"provider"`
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// AssessmentPayload is the data stored on a self-assessment record.
type AssessmentPayload struct {
	Answers              Answers             `json:"answers"`
	EmployeeID           string              `json:"employeeId"`
	EmployeeName         string              `json:"employeeName"`
	QuarterID            string              `json:"quarterId"`
	QuarterName          string              `json:"quarterName"`
	QuarterYear          int                 `json:"quarterYear"`
	TotalQuestions       int                 `json:"totalQuestions"`
	AnsweredQuestions    int                 `json:"answeredQuestions"`
	QualitativeCount     int                 `json:"qualitativeCount"`
	QuantitativeCount    int                 `json:"quantitativeCount"`
	CompletionPercentage int                 `json:"completionPercentage"`
	AISummary            string              `json:"aiSummary,omitempty"`
	AIGenerations        []GenerationOutcome `json:"aiGenerations,omitempty"`
	AutoSaved            bool                `json:"autoSaved"`
	LastSavedAt          time.Time           `json:"lastSavedAt"`
	SubmittedAt          *time.Time          `json:"submittedAt,omitempty"`
	SessionID            string              `json:"sessionId"`
	Version              string              `json:"version"`
}

type Progress struct {
	Answered   int `json:"answered"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type SelfAssessment struct {
	EmployeeID   string                   `json:"employeeId"`
	QuarterID    string                   `json:"quarterId"`
	RecordID     string                   `json:"recordId,omitempty"`
	Status       performance.Status       `json:"status"`
	Qualitative  []questions.Qualitative  `json:"qualitativeQuestions"`
	Quantitative []questions.Quantitative `json:"quantitativeQuestions"`
	Answers      Answers                  `json:"answers"`
	AISummary    string                   `json:"aiSummary,omitempty"`
	Progress     Progress                 `json:"progress"`
	SubmittedAt  *time.Time               `json:"submittedAt,omitempty"`
}

type FeedbackOutcome struct {
	ColleagueID    string    `json:"colleagueId"`
	ColleagueName  string    `json:"colleagueName"`
	ColleagueEmail string    `json:"colleagueEmail"`
	Status         string    `json:"status"`
	RequestedAt    time.Time `json:"requestedAt"`
	Provider       string    `json:"provider,omitempty"`
	MessageID      string    `json:"messageId,omitempty"`
	EmailStatus    string    `json:"emailStatus,omitempty"`
	EmailError     string    `json:"emailError,omitempty"`
}

// FeedbackRequestPayload is the data stored on a request-feedback record.
// It always describes the latest batch.
type FeedbackRequestPayload struct {
	Requests    []FeedbackOutcome `json:"requests"`
	Message     string            `json:"message,omitempty"`
	FeedbackURL string            `json:"feedbackUrl"`
	SentCount   int               `json:"sentCount"`
	FailedCount int               `json:"failedCount"`
	RequestedAt time.Time         `json:"requestedAt"`
}

type FeedbackSummaryPayload struct {
	ChangedAt time.Time `json:"changedAt"`
}

type GeneratedFeedback struct {
	Answers  Answers           `json:"answers"`
	Feedback map[string]string `json:"feedback"`
	Summary  string            `json:"summary"`
	Provider string            `json:"provider"`
}
