package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required,min=2"`
	Status string `json:"status" validate:"omitempty,oneof=active paused"`
}

func TestStructReportsFirstFieldByJSONName(t *testing.T) {
	err := Struct(samplePayload{Email: "not-an-email", Name: "Ann"})
	require.Error(t, err)
	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "email", fieldErr.Field)
	assert.Equal(t, "email must be a valid email", fieldErr.Message)
}

func TestStructMessages(t *testing.T) {
	err := Struct(samplePayload{Email: "a@x.com", Name: "A"})
	require.Error(t, err)
	assert.Equal(t, "name must be at least 2 characters", err.Error())

	err = Struct(samplePayload{Email: "a@x.com", Name: "Ann", Status: "gone"})
	require.Error(t, err)
	assert.Equal(t, "status must be one of: active paused", err.Error())

	assert.NoError(t, Struct(samplePayload{Email: "a@x.com", Name: "Ann"}))
}

func TestLegacyHelpers(t *testing.T) {
	assert.NoError(t, ValidateEmail("a@x"))
	assert.ErrorIs(t, ValidateEmail("ax.com"), ErrInvalidEmail)
	assert.NoError(t, ValidatePassword("pw12"))
	assert.ErrorIs(t, ValidatePassword("pw1"), ErrInvalidPassword)
	assert.ErrorIs(t, ValidateName(" A "), ErrInvalidName)
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}
