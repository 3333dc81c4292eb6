package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Message: "symbol is required"}
	assert.Equal(t, "symbol is required", err.Error())

	err = &ValidationError{Field: "limit", Message: "must be positive"}
	assert.Equal(t, "limit: must be positive", err.Error())
}

func TestNewValidationErrorf(t *testing.T) {
	err := NewValidationErrorf("symbol %q exceeds %d characters", "ABC", 50)

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, `symbol "ABC" exceeds 50 characters`, validationErr.Message)
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(NewValidationErrorf("bad")))
	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", NewFieldError("metric", "unknown"))))
	assert.False(t, IsValidationError(errors.New("plain")))
	assert.False(t, IsValidationError(nil))
}
