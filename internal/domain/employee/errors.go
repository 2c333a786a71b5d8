package employee

import "hrunity/internal/apperr"

var (
	ErrEmployeeNotFound  = apperr.New(apperr.ErrNotFound, "employee not found")
	ErrDuplicateEmployee = apperr.New(apperr.ErrDuplicateID, "employee id already exists")
)
