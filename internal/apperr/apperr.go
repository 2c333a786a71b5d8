// Package apperr defines the error kinds shared by every service.
//
// Domain packages declare their own sentinels with New so that callers can
// match either the precise sentinel or its kind with errors.Is.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrExternalService = errors.New("external service failure")
	ErrStorage         = errors.New("storage failure")
)

// Error is a message bound to one of the kinds above.
type Error struct {
	kind error
	msg  string
}

func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries per-field issues and matches ErrValidation.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Reason)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Field: field, Reason: reason}}}
}

// Issues returns the sorted field issues of err, or nil when err is not a
// ValidationError.
func Issues(err error) []FieldIssue {
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Issues) == 0 {
		return nil
	}
	out := make([]FieldIssue, len(verr.Issues))
	copy(out, verr.Issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// External wraps a provider failure so it matches ErrExternalService while
// keeping the provider error in the chain.
func External(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &externalError{provider: provider, err: err}
}

type externalError struct {
	provider string
	err      error
}

func (e *externalError) Error() string {
	return e.provider + ": " + e.err.Error()
}

func (e *externalError) Unwrap() []error {
	return []error{ErrExternalService, e.err}
}
