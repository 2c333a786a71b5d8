package questions

import "hrunity/internal/apperr"

var (
	ErrQuestionNotFound = apperr.New(apperr.ErrNotFound, "question not found")
	ErrInvalidScale     = apperr.Invalid("scale", "must be one of 1-5, 1-10, 0-100, Percentage")
)
