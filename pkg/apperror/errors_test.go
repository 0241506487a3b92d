package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("close comanda: %w", NewInvalidStateError("comanda is closed"))

	assert.True(t, IsKind(err, KindInvalidState))
	assert.False(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindInternal))
}

func TestGetAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind Kind
	}{
		{"not found", NewNotFoundError("Comanda"), http.StatusNotFound, KindNotFound},
		{"validation", NewValidationError("quantity must be positive"), http.StatusUnprocessableEntity, KindValidation},
		{"limit", NewLimitExceededError("promotion usage limit reached"), http.StatusConflict, KindLimitExceeded},
		{"wrapped", fmt.Errorf("x: %w", ErrForbidden), http.StatusForbidden, KindForbidden},
		{"infrastructure", errors.New("connection refused"), http.StatusInternalServerError, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetAppError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantKind, got.Kind)
		})
	}
}

func TestInfrastructureErrorsAreNotLeaked(t *testing.T) {
	got := GetAppError(errors.New("pq: password authentication failed"))
	assert.Equal(t, "Internal server error", got.Message)
}

func TestFieldValidationError(t *testing.T) {
	err := NewFieldValidationError([]FieldError{{Field: "name", Message: "name is required"}})

	assert.Equal(t, "Validation failed", err.Error())
	assert.Len(t, err.Errors, 1)
	assert.Equal(t, "name", err.Errors[0].Field)
}
