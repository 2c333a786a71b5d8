package quarter

import "hrunity/internal/apperr"

var (
	ErrQuarterNotFound = apperr.New(apperr.ErrNotFound, "quarter not found")
	ErrNoActiveQuarter = apperr.New(apperr.ErrNotFound, "no active quarter")
	ErrInvalidRange    = apperr.Invalid("endDate", "must not be before startDate")
)
