package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopportal/accounts-service/internal/dto"
	"github.com/shopportal/accounts-service/internal/service"
)

// SessionMiddleware authenticates requests by the session cookie and adds
// the session identity to the request context.
func SessionMiddleware(authService service.AuthService, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := cookie.Read(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "session cookie is required",
			})
			c.Abort()
			return
		}

		claims, err := authService.Authenticate(c.Request.Context(), payload.Token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "invalid or expired session",
			})
			c.Abort()
			return
		}

		c.Set("uid", claims.UID)
		c.Set("email", claims.Email)
		c.Set("role", payload.Role)

		c.Next()
	}
}
