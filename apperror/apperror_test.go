package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name    string
		errType ErrorType
		want    int
	}{
		{"auth", AuthError, http.StatusUnauthorized},
		{"forbidden", ForbiddenError, http.StatusForbidden},
		{"not found", NotFoundError, http.StatusNotFound},
		{"validation", ValidationError, http.StatusBadRequest},
		{"bad request", BadRequestError, http.StatusBadRequest},
		{"conflict", ConflictError, http.StatusBadRequest},
		{"database", DatabaseError, http.StatusInternalServerError},
		{"config", ConfigError, http.StatusInternalServerError},
		{"internal", InternalError, http.StatusInternalServerError},
		{"unknown", UnknownError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAppError(tt.errType, "boom", nil)
			assert.Equal(t, tt.want, err.StatusCode())
		})
	}
}

func TestErrorAndUnwrap(t *testing.T) {
	underlying := errors.New("connection refused")
	err := NewDatabaseError("failed to get user", underlying)

	assert.Equal(t, "failed to get user: connection refused", err.Error())
	assert.Equal(t, underlying, errors.Unwrap(err))

	bare := NewNotFoundError("post not found", nil)
	assert.Equal(t, "post not found", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}

func TestToResponseHidesUnderlying(t *testing.T) {
	err := NewDatabaseError("failed to get user", errors.New("dsn=secret host=10.0.0.1"))
	resp := err.ToResponse()
	assert.Equal(t, "failed to get user", resp.Message)
}

func TestFromError(t *testing.T) {
	appErr := NewValidationError("missing required fields: title", nil)

	t.Run("direct", func(t *testing.T) {
		got, ok := FromError(appErr)
		require.True(t, ok)
		assert.Equal(t, appErr, got)
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("handler: %w", appErr)
		got, ok := FromError(wrapped)
		require.True(t, ok)
		assert.Equal(t, ValidationError, got.Type)
	})

	t.Run("plain error", func(t *testing.T) {
		_, ok := FromError(errors.New("plain"))
		assert.False(t, ok)
	})

	t.Run("nil", func(t *testing.T) {
		_, ok := FromError(nil)
		assert.False(t, ok)
	})
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("x", nil)))
	assert.True(t, IsAuthError(NewAuthError("x", nil)))
	assert.True(t, IsForbidden(NewForbiddenError("x", nil)))
	assert.True(t, IsValidationError(NewValidationError("x", nil)))
	assert.True(t, IsConflictError(NewConflictError("x", nil)))

	assert.False(t, IsNotFound(NewAuthError("x", nil)))
	assert.False(t, IsAuthError(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", NewForbiddenError("x", nil))
	assert.True(t, IsForbidden(wrapped))
}
