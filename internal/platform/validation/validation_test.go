package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"hrunity/internal/apperr"
)

type sample struct {
	Name   string  `json:"name" validate:"required"`
	Email  string  `json:"email" validate:"omitempty,email"`
	Rating float64 `json:"rating" validate:"gte=0,lte=5"`
	Scale  string  `json:"scale" validate:"oneof=1-5 1-10"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Email: "nope", Rating: 7, Scale: "3"})
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrValidation))

	issues := apperr.Issues(err)
	fields := map[string]string{}
	for _, issue := range issues {
		fields[issue.Field] = issue.Reason
	}
	require.Equal(t, "is required", fields["name"])
	require.Equal(t, "must be a valid email address", fields["email"])
	require.Equal(t, "must be at most 5", fields["rating"])
	require.Equal(t, "must be one of 1-5, 1-10", fields["scale"])
}

func TestStructAcceptsValid(t *testing.T) {
	require.NoError(t, Struct(sample{Name: "Jane", Rating: 4.5, Scale: "1-5"}))
}
