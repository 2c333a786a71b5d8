package review

import "hrunity/internal/apperr"

var (
	ErrAssessmentCompleted = apperr.New(apperr.ErrConflict, "self-assessment has been submitted and can no longer be changed")
	ErrIncompleteAnswers   = apperr.Invalid("answers", "every question must be answered before submitting")
	ErrNoColleagues        = apperr.Invalid("colleagueIds", "at least one colleague is required")
	ErrSelfFeedback        = apperr.Invalid("colleagueIds", "cannot request feedback from yourself")
	ErrSummaryStatus       = apperr.Invalid("status", "must be one of pending, in_progress, completed")
)
