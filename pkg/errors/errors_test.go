package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesTemplate(t *testing.T) {
	err := Clone(ErrNotFound, "student 7 not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "student 7 not found", err.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(ErrValidation, "", map[string]string{"amount": "Amount must be at least 0"})
	assert.Equal(t, "validation failed", err.Message)
	assert.Equal(t, "Amount must be at least 0", err.Details["amount"])
	assert.Nil(t, ErrValidation.Details)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("context: %w", ErrNotReady)
	assert.Equal(t, ErrNotReady.Code, FromError(wrapped).Code)

	plain := FromError(errors.New("disk full"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
	assert.Equal(t, "internal server error: disk full", plain.Error())
}
