package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medicloud/docs-api/pkg/errors"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// StatusFromError maps application error codes to HTTP statuses.
func StatusFromError(err error) int {
	switch {
	case apperrors.IsCode(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case apperrors.IsCode(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	case apperrors.IsCode(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case apperrors.IsCode(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case apperrors.IsCode(err, apperrors.ErrInvalidTransition):
		return http.StatusConflict
	case apperrors.IsCode(err, apperrors.ErrGenerationFailed):
		return http.StatusBadGateway
	case apperrors.IsCode(err, apperrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes the standard error envelope for err.
func AbortWithError(c *gin.Context, err error) {
	c.JSON(StatusFromError(err), NewErrorResponse(err.Error()))
}
