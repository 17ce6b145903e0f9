package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/medicloud/docs-api/pkg/errors"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.NewNotFound("report", nil), http.StatusNotFound},
		{apperrors.NewBadRequest("bad input", nil), http.StatusBadRequest},
		{apperrors.NewUnauthorized(errors.New("no token")), http.StatusUnauthorized},
		{apperrors.NewForbidden("admin only"), http.StatusForbidden},
		{apperrors.NewInvalidTransition("cannot sign draft"), http.StatusConflict},
		{apperrors.NewGenerationFailed(errors.New("model down")), http.StatusBadGateway},
		{apperrors.NewStoreUnavailable(errors.New("db down")), http.StatusServiceUnavailable},
		{apperrors.NewInternal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
		// Wrapped app errors still map through errors.As.
		{fmt.Errorf("context: %w", apperrors.NewNotFound("user", nil)), http.StatusNotFound},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFromError(tt.err), "error: %v", tt.err)
	}
}

func TestResponseEnvelope(t *testing.T) {
	ok := NewSuccessResponse(map[string]string{"k": "v"})
	assert.Equal(t, "success", ok.Status)
	assert.NotNil(t, ok.Data)
	assert.Empty(t, ok.Message)

	fail := NewErrorResponse("something broke")
	assert.Equal(t, "error", fail.Status)
	assert.Equal(t, "something broke", fail.Message)
	assert.Nil(t, fail.Data)
}
