package review

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hrunity/internal/apperr"
	"hrunity/internal/domain/employee"
	"hrunity/internal/domain/performance"
	"hrunity/internal/domain/quarter"
	"hrunity/internal/domain/questions"
	"hrunity/internal/platform/email"
	"hrunity/internal/platform/feedbackgen"
	"hrunity/internal/platform/storage"
)

type fixture struct {
	svc         *Service
	employees   *employee.Service
	records     *performance.Service
	qualitative *questions.QualitativeService
	mailer      *email.Simulated
	jobs        *captureDebouncer
	recorder    *countingRecorder
	quarterID   string
}

type fixtureOption func(*Deps)

func withMailer(m email.Provider) fixtureOption {
	return func(d *Deps) { d.Mailer = m }
}

func withGenerator(g feedbackgen.Generator) fixtureOption {
	return func(d *Deps) { d.Generator = g }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	ns := storage.NewNamespace(storage.NewMemory(), "test")
	f := &fixture{
		employees:   employee.NewService(ns, 0, true),
		records:     performance.NewService(ns, 0),
		qualitative: questions.NewQualitativeService(ns, 0, true),
		mailer:      email.NewSimulated(),
		jobs:        &captureDebouncer{},
		recorder:    &countingRecorder{},
		quarterID:   quarter.ID(time.Now().UTC().Year(), 1),
	}
	deps := Deps{
		Employees:    f.employees,
		Quarters:     quarter.NewService(ns, 0, true),
		Qualitative:  f.qualitative,
		Quantitative: questions.NewQuantitativeService(ns, 0, true),
		Records:      f.records,
		Mailer:       f.mailer,
		Generator:    feedbackgen.NewRules(),
		Jobs:         f.jobs,
		Recorder:     f.recorder,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.svc = NewService(deps, Options{
		EmailFrom:       "noreply@hrunity.local",
		EmailFromName:   "Performance Management System",
		FeedbackBaseURL: "https://reviews.example.com/",
		AutosaveQuiet:   2 * time.Second,
	})
	return f
}

func fullAnswers() Answers {
	return Answers{
		"qualitative_1":  "Leads the platform guild.",
		"qualitative_2":  "Clear and concise.",
		"qualitative_3":  "Pairs often.",
		"quantitative_1": "5",
		"quantitative_2": "4",
		"quantitative_3": "2",
	}
}

func TestSelfAssessmentDefaults(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.SelfAssessment(context.Background(), "EMP001", f.quarterID)
	require.NoError(t, err)
	require.Equal(t, performance.StatusPending, view.Status)
	require.Len(t, view.Qualitative, 3)
	require.Len(t, view.Quantitative, 3)
	require.Equal(t, Progress{Answered: 0, Total: 6, Percentage: 0}, view.Progress)
}

func TestSelfAssessmentUnknownSubjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SelfAssessment(ctx, "EMP404", f.quarterID)
	require.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	_, err = f.svc.SelfAssessment(ctx, "EMP001", "1999-Q1")
	require.ErrorIs(t, err, quarter.ErrQuarterNotFound)
}

func TestSaveDraftMovesToInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.SaveDraft(ctx, "EMP001", f.quarterID, Answers{"qualitative_1": "Working on it", "quantitative_1": "3"})
	require.NoError(t, err)
	require.Equal(t, performance.StatusInProgress, rec.Status)

	payload, err := decodePayload[AssessmentPayload](rec)
	require.NoError(t, err)
	require.Equal(t, 2, payload.AnsweredQuestions)
	require.Equal(t, 6, payload.TotalQuestions)
	require.Equal(t, 33, payload.CompletionPercentage)
	require.Equal(t, "John Smith", payload.EmployeeName)
	require.Equal(t, PayloadVersion, payload.Version)
	require.NotEmpty(t, payload.SessionID)
	require.False(t, payload.AutoSaved)
	require.Nil(t, payload.SubmittedAt)

	again, err := f.svc.SaveDraft(ctx, "EMP001", f.quarterID, Answers{"qualitative_1": "Done"})
	require.NoError(t, err)
	require.Equal(t, rec.ID, again.ID)
	second, err := decodePayload[AssessmentPayload](again)
	require.NoError(t, err)
	require.Equal(t, payload.SessionID, second.SessionID)
}

func TestSaveDraftValidatesAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveDraft(ctx, "EMP001", f.quarterID, Answers{"quantitative_1": "9", "qualitative_99": "x"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	issues := apperr.Issues(err)
	require.Len(t, issues, 1)
	require.Equal(t, "answers.quantitative_1", issues[0].Field)

	_, found, err := f.records.RecordByType(ctx, "EMP001", f.quarterID, performance.TypeSelfAssessment)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSubmitRequiresEveryAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	partial := fullAnswers()
	partial["qualitative_2"] = "   "
	_, err := f.svc.Submit(ctx, "EMP001", f.quarterID, partial)
	require.ErrorIs(t, err, ErrIncompleteAnswers)

	ok, err := f.svc.IsAllAnswered(ctx, fullAnswers())
	require.NoError(t, err)
	require.True(t, ok)

	rec, err := f.svc.Submit(ctx, "EMP001", f.quarterID, fullAnswers())
	require.NoError(t, err)
	require.Equal(t, performance.StatusCompleted, rec.Status)
	payload, err := decodePayload[AssessmentPayload](rec)
	require.NoError(t, err)
	require.NotNil(t, payload.SubmittedAt)
	require.Equal(t, 100, payload.CompletionPercentage)
}

func TestSubmitIgnoresAnswersToUnknownQuestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	answers := fullAnswers()
	answers["qualitative_retired"] = "No longer asked."
	ok, err := f.svc.IsAllAnswered(ctx, answers)
	require.NoError(t, err)
	require.True(t, ok)

	rec, err := f.svc.Submit(ctx, "EMP001", f.quarterID, answers)
	require.NoError(t, err)
	require.Equal(t, performance.StatusCompleted, rec.Status)
	payload, err := decodePayload[AssessmentPayload](rec)
	require.NoError(t, err)
	require.NotContains(t, payload.Answers, "qualitative_retired")
	require.Len(t, payload.Answers, 6)
}

func TestSubmitAfterQuestionDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveDraft(ctx, "EMP001", f.quarterID, fullAnswers())
	require.NoError(t, err)
	require.NoError(t, f.qualitative.Delete(ctx, "3"))

	view, err := f.svc.SelfAssessment(ctx, "EMP001", f.quarterID)
	require.NoError(t, err)
	require.Equal(t, Progress{Answered: 5, Total: 5, Percentage: 100}, view.Progress)

	rec, err := f.svc.Submit(ctx, "EMP001", f.quarterID, view.Answers)
	require.NoError(t, err)
	require.Equal(t, performance.StatusCompleted, rec.Status)
}

func TestCompletedAssessmentIsReadOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "EMP001", f.quarterID, fullAnswers())
	require.NoError(t, err)

	_, err = f.svc.SaveDraft(ctx, "EMP001", f.quarterID, Answers{"qualitative_1": "changed"})
	require.ErrorIs(t, err, ErrAssessmentCompleted)
	require.ErrorIs(t, err, apperr.ErrConflict)

	err = f.svc.ScheduleAutosave(ctx, "EMP001", f.quarterID, Answers{"qualitative_1": "changed"})
	require.ErrorIs(t, err, ErrAssessmentCompleted)

	_, err = f.svc.GenerateFeedback(ctx, "EMP001", f.quarterID, fullAnswers())
	require.ErrorIs(t, err, ErrAssessmentCompleted)

	view, err := f.svc.SelfAssessment(ctx, "EMP001", f.quarterID)
	require.NoError(t, err)
	require.Equal(t, performance.StatusCompleted, view.Status)
	require.Equal(t, "Leads the platform guild.", view.Answers["qualitative_1"])
}

func TestScheduleAutosaveDebouncesPerSubject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ScheduleAutosave(ctx, "EMP001", f.quarterID, Answers{"qualitative_1": "a"}))
	require.NoError(t, f.svc.ScheduleAutosave(ctx, "EMP001", f.quarterID, Answers{"qualitative_1": "ab"}))
	require.Equal(t, 2, f.jobs.calls)
	require.Equal(t, 2*time.Second, f.jobs.quiet)

	_, found, err := f.records.RecordByType(ctx, "EMP001", f.quarterID, performance.TypeSelfAssessment)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, f.jobs.fire(ctx))
	rec, found, err := f.records.RecordByType(ctx, "EMP001", f.quarterID, performance.TypeSelfAssessment)
	require.NoError(t, err)
	require.True(t, found)
	payload, err := decodePayload[AssessmentPayload](rec)
	require.NoError(t, err)
	require.Equal(t, "ab", payload.Answers["qualitative_1"])
	require.True(t, payload.AutoSaved)
}

func TestAutosaveAfterSubmitFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ScheduleAutosave(ctx, "EMP001", f.quarterID, Answers{"qualitative_1": "late edit"}))
	_, err := f.svc.Submit(ctx, "EMP001", f.quarterID, fullAnswers())
	require.NoError(t, err)

	require.ErrorIs(t, f.jobs.fire(ctx), ErrAssessmentCompleted)
	view, err := f.svc.SelfAssessment(ctx, "EMP001", f.quarterID)
	require.NoError(t, err)
	require.Equal(t, performance.StatusCompleted, view.Status)
	require.Equal(t, "Leads the platform guild.", view.Answers["qualitative_1"])
}

func TestRequestFeedbackRecordsOutcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noEmail := ""
	_, err := f.employees.Update(ctx, "EMP003", employee.Patch{EmployeeEmail: &noEmail})
	require.NoError(t, err)

	payload, rec, err := f.svc.RequestFeedback(ctx, "EMP001", f.quarterID, []string{"EMP002", "EMP003", "EMP002"}, "Thanks for your time")
	require.NoError(t, err)
	require.Equal(t, performance.StatusInProgress, rec.Status)
	require.Equal(t, 1, payload.SentCount)
	require.Equal(t, 1, payload.FailedCount)
	require.Equal(t, "https://reviews.example.com/feedback/EMP001/"+f.quarterID, payload.FeedbackURL)

	require.Len(t, payload.Requests, 2)
	sent := payload.Requests[0]
	require.Equal(t, OutcomeSent, sent.Status)
	require.Equal(t, "simulated", sent.Provider)
	require.True(t, strings.HasPrefix(sent.MessageID, "sim_"))
	require.Equal(t, email.StatusSimulated, sent.EmailStatus)
	require.Equal(t, OutcomeFailed, payload.Requests[1].Status)
	require.NotEmpty(t, payload.Requests[1].EmailError)

	messages := f.mailer.Sent()
	require.Len(t, messages, 1)
	msg := messages[0]
	require.Equal(t, "sarah.johnson@company.com", msg.To)
	require.Equal(t, "john.smith@company.com", msg.ReplyTo)
	require.Equal(t, "noreply@hrunity.local", msg.From)
	require.Equal(t, fmt.Sprintf("Feedback Request for Q1 %d", time.Now().UTC().Year()), msg.Subject)
	require.Contains(t, msg.Text, "Thanks for your time")
	require.Contains(t, msg.HTML, payload.FeedbackURL)

	require.Equal(t, 1, f.recorder.emails[true])
	require.Equal(t, 1, f.recorder.emails[false])
}

func TestRequestFeedbackAllFailed(t *testing.T) {
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil, apperr.External("mock", errors.New("smtp down")))
	f := newFixture(t, withMailer(mailer))
	ctx := context.Background()

	payload, rec, err := f.svc.RequestFeedback(ctx, "EMP001", f.quarterID, []string{"EMP002", "EMP004"}, "")
	require.NoError(t, err)
	require.Equal(t, performance.StatusFailed, rec.Status)
	require.Zero(t, payload.SentCount)
	require.Equal(t, 2, payload.FailedCount)
	require.Contains(t, payload.Requests[0].EmailError, "smtp down")
	mailer.AssertNumberOfCalls(t, "Send", 2)
}

func TestRequestFeedbackOneProviderFailure(t *testing.T) {
	sent := email.Result{Provider: "mock", MessageID: "m-1", Status: email.StatusSent}
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.Anything).Return(sent, nil).Once()
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("mailbox unavailable")).Once()
	mailer.On("Send", mock.Anything, mock.Anything).Return(sent, nil).Once()
	f := newFixture(t, withMailer(mailer))
	ctx := context.Background()

	payload, rec, err := f.svc.RequestFeedback(ctx, "EMP001", f.quarterID, []string{"EMP002", "EMP003", "EMP004"}, "")
	require.NoError(t, err)
	require.Equal(t, performance.StatusInProgress, rec.Status)
	require.Len(t, payload.Requests, 3)
	require.Equal(t, 2, payload.SentCount)
	require.Equal(t, 1, payload.FailedCount)

	failed := 0
	for _, r := range payload.Requests {
		if r.Status == OutcomeFailed {
			failed++
			require.Equal(t, "EMP003", r.ColleagueID)
			require.Contains(t, r.EmailError, "mailbox unavailable")
		}
	}
	require.Equal(t, 1, failed)
	mailer.AssertNumberOfCalls(t, "Send", 3)
}

func TestRequestFeedbackStoresOutcomesWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(email.Result{Provider: "mock", MessageID: "m-1", Status: email.StatusSent}, nil).Once()
	f := newFixture(t, withMailer(mailer))

	payload, _, err := f.svc.RequestFeedback(ctx, "EMP001", f.quarterID, []string{"EMP002", "EMP003", "EMP004"}, "")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, payload.SentCount)
	require.Equal(t, 2, payload.FailedCount)
	mailer.AssertNumberOfCalls(t, "Send", 1)

	rec, found, err := f.records.RecordByType(context.Background(), "EMP001", f.quarterID, performance.TypeRequestFeedback)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, performance.StatusInProgress, rec.Status)
	stored, err := decodePayload[FeedbackRequestPayload](rec)
	require.NoError(t, err)
	require.Len(t, stored.Requests, 3)
	require.Equal(t, OutcomeSent, stored.Requests[0].Status)
	require.Equal(t, OutcomeFailed, stored.Requests[2].Status)
	require.Contains(t, stored.Requests[2].EmailError, "context canceled")
}

func TestRequestFeedbackResendOverwrites(t *testing.T) {
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()
	mailer.On("Send", mock.Anything, mock.Anything).Return(email.Result{Provider: "mock", MessageID: "m-1", Status: email.StatusSent}, nil)
	f := newFixture(t, withMailer(mailer))
	ctx := context.Background()

	_, rec, err := f.svc.RequestFeedback(ctx, "EMP001", f.quarterID, []string{"EMP002"}, "")
	require.NoError(t, err)
	require.Equal(t, performance.StatusFailed, rec.Status)

	payload, again, err := f.svc.RequestFeedback(ctx, "EMP001", f.quarterID, []string{"EMP004"}, "second try")
	require.NoError(t, err)
	require.Equal(t, rec.ID, again.ID)
	require.Equal(t, performance.StatusInProgress, again.Status)
	require.Len(t, payload.Requests, 1)
	require.Equal(t, "EMP004", payload.Requests[0].ColleagueID)
	require.Equal(t, "m-1", payload.Requests[0].MessageID)
}

func TestRequestFeedbackValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.RequestFeedback(ctx, "EMP001", f.quarterID, []string{" "}, "")
	require.ErrorIs(t, err, ErrNoColleagues)
	_, _, err = f.svc.RequestFeedback(ctx, "EMP001", f.quarterID, []string{"EMP001"}, "")
	require.ErrorIs(t, err, ErrSelfFeedback)
	_, _, err = f.svc.RequestFeedback(ctx, "EMP001", f.quarterID, []string{"EMP002", "EMP404"}, "")
	require.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	require.Empty(t, f.mailer.Sent())
}

func TestGenerateFeedbackWithRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.GenerateFeedback(ctx, "EMP001", f.quarterID, Answers{"quantitative_1": "5", "quantitative_3": "2"})
	require.NoError(t, err)
	require.Equal(t, "rules", res.Provider)
	require.NotEmpty(t, res.Summary)
	require.Contains(t, res.Answers["qualitative_1"], "3.5")
	require.Equal(t, "5", res.Answers["quantitative_1"])

	view, err := f.svc.SelfAssessment(ctx, "EMP001", f.quarterID)
	require.NoError(t, err)
	require.Equal(t, performance.StatusInProgress, view.Status)
	require.Equal(t, res.Summary, view.AISummary)
	require.Equal(t, res.Answers["qualitative_3"], view.Answers["qualitative_3"])
	require.Equal(t, 1, f.recorder.generations[true])
}

func TestGenerateFeedbackNeedsScores(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GenerateFeedback(context.Background(), "EMP001", f.quarterID, Answers{"qualitative_1": "text only"})
	require.ErrorIs(t, err, feedbackgen.ErrNoScores)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGenerateFeedbackFailureIsRecorded(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("model overloaded"))
	f := newFixture(t, withGenerator(gen))
	ctx := context.Background()

	_, err := f.svc.GenerateFeedback(ctx, "EMP001", f.quarterID, Answers{"quantitative_1": "4", "qualitative_1": "mine"})
	require.ErrorIs(t, err, apperr.ErrExternalService)
	require.Contains(t, err.Error(), "model overloaded")

	rec, found, err := f.records.RecordByType(ctx, "EMP001", f.quarterID, performance.TypeSelfAssessment)
	require.NoError(t, err)
	require.True(t, found)
	payload, err := decodePayload[AssessmentPayload](rec)
	require.NoError(t, err)
	require.Len(t, payload.AIGenerations, 1)
	require.False(t, payload.AIGenerations[0].Success)
	require.Equal(t, "mockgen", payload.AIGenerations[0].Provider)
	require.Equal(t, "mine", payload.Answers["qualitative_1"])
	require.Equal(t, 1, f.recorder.generations[false])

	gen.AssertCalled(t, "Generate", mock.Anything, mock.MatchedBy(func(req feedbackgen.Request) bool {
		return len(req.Quantitative) == 1 && req.Quantitative[0].Answer == "4" && len(req.Qualitative) == 3
	}))
}

func TestFeedbackSummaryTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.AdvanceFeedbackSummary(ctx, "EMP001", f.quarterID)
	require.NoError(t, err)
	require.Equal(t, performance.StatusInProgress, rec.Status)

	rec, err = f.svc.AdvanceFeedbackSummary(ctx, "EMP001", f.quarterID)
	require.NoError(t, err)
	require.Equal(t, performance.StatusCompleted, rec.Status)

	rec, err = f.svc.AdvanceFeedbackSummary(ctx, "EMP001", f.quarterID)
	require.NoError(t, err)
	require.Equal(t, performance.StatusCompleted, rec.Status)

	rec, err = f.svc.SetFeedbackSummaryStatus(ctx, "EMP001", f.quarterID, performance.StatusPending)
	require.NoError(t, err)
	require.Equal(t, performance.StatusPending, rec.Status)

	_, err = f.svc.SetFeedbackSummaryStatus(ctx, "EMP001", f.quarterID, performance.StatusFailed)
	require.ErrorIs(t, err, ErrSummaryStatus)

	records, err := f.records.RecordsFor(ctx, "EMP001", f.quarterID)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestNextSummaryStatus(t *testing.T) {
	require.Equal(t, performance.StatusInProgress, NextSummaryStatus("", false))
	require.Equal(t, performance.StatusInProgress, NextSummaryStatus(performance.StatusPending, true))
	require.Equal(t, performance.StatusCompleted, NextSummaryStatus(performance.StatusInProgress, true))
	require.Equal(t, performance.StatusCompleted, NextSummaryStatus(performance.StatusCompleted, true))
}

func TestReportRendersPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveDraft(ctx, "EMP001", f.quarterID, Answers{"qualitative_1": "Mentors the team – weekly", "quantitative_1": "4"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Report(ctx, "EMP001", f.quarterID, &buf))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	err = f.svc.Report(ctx, "EMP404", f.quarterID, &buf)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
