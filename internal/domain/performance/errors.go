package performance

import "hrunity/internal/apperr"

var (
	ErrRecordNotFound  = apperr.New(apperr.ErrNotFound, "performance record not found")
	ErrDuplicateRecord = apperr.New(apperr.ErrDuplicateID, "a record of this type already exists for the employee and quarter")
	ErrInvalidType     = apperr.Invalid("type", "must be one of self_assessment, request_feedback, feedback_summary")
	ErrInvalidStatus   = apperr.Invalid("status", "must be one of pending, in_progress, completed, failed")
	ErrMissingOwner    = apperr.Invalid("employeeId", "employeeId and quarterId are required")
)
