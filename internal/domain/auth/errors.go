package auth

import "hrunity/internal/apperr"

var (
	ErrInvalidRole      = apperr.Invalid("role", "must be one of employee, manager, admin")
	ErrEmployeeRequired = apperr.Invalid("employeeId", "is required for the employee and manager roles")
	ErrNotManager       = apperr.New(apperr.ErrUnauthorized, "employee is not a manager")
	ErrInvalidPasscode  = apperr.New(apperr.ErrUnauthorized, "invalid admin passcode")
	ErrInvalidSession   = apperr.New(apperr.ErrUnauthorized, "invalid or expired session")
	ErrForbidden        = apperr.New(apperr.ErrUnauthorized, "not allowed to act for this employee")
)
