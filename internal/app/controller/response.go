package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

// respondServiceError maps service sentinels to status and error code.
// Storage details are logged, never returned.
func respondServiceError(c *gin.Context, log *logger.Logger, err error, action string) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		log.Warn(action+": validation failed", map[string]interface{}{
			"fields": validationErr.Fields,
		})
		apperrors.RespondWithValidationError(c, validationErr.Fields)
	case errors.Is(err, service.ErrValidation):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid input")
	case errors.Is(err, service.ErrUnauthorized):
		apperrors.Unauthorized(c, "")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrFavoriteNotFound):
		apperrors.NotFound(c, apperrors.FavoriteNotFound, "Product is not in favorites")
	case errors.Is(err, service.ErrConflict):
		log.Warn(action+": conflict", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.Conflict(c, apperrors.ResourceConflict, "Another change was in progress, please retry")
	case errors.Is(err, service.ErrTransient):
		log.Error(action+": storage unavailable", err)
		apperrors.ServiceUnavailable(c, "")
	default:
		log.Error(action+": unexpected error", err)
		apperrors.InternalError(c, "")
	}
}

// parseIDParam reads a positive uint path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func respondOK(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusOK, body)
}
