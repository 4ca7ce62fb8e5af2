package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopportal/accounts-service/internal/domain"
	"github.com/shopportal/accounts-service/internal/dto"
)

// respondError maps domain error kinds onto HTTP statuses. Provider
// rejections without a dedicated status deliberately fall through to 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "invalid email or password",
		})
	case errors.Is(err, domain.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not found",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}
}

// respondValidationError reports malformed request input.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Validation failed",
		Message: err.Error(),
	})
}
