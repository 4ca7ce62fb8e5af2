package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopportal/accounts-service/internal/dto"
	"github.com/shopportal/accounts-service/internal/service"
)

// AuthHandler handles session requests
type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
	cookie      SessionCookie
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, userService service.UserService, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cookie:      cookie,
	}
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password, issuing the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	// cookie placement is best-effort, the token still travels in the body
	_ = h.cookie.Write(c, result.IDToken, string(result.User.Role))

	c.JSON(http.StatusOK, dto.LoginResponse{
		IDToken: result.IDToken,
		User:    result.User,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Clear the session cookie and revoke the session token
// @Tags auth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	// logout succeeds whether or not a session cookie was presented
	if payload, err := h.cookie.Read(c); err == nil {
		_ = h.authService.Logout(c.Request.Context(), payload.Token)
	}

	h.cookie.Clear(c)

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

// ResendVerification handles verification email resends
// @Summary Resend verification email
// @Description Send a fresh verification email for an existing account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResendVerificationRequest true "Resend request"
// @Success 200 {object} dto.VerificationDispatch
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	dispatch, err := h.authService.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispatch)
}

// VerifyEmail handles verification link clicks
// @Summary Verify email address
// @Description Consume a verification token and mark the account verified
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} dto.VerifyEmailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "token query parameter is required",
		})
		return
	}

	account, err := h.authService.ConfirmVerification(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyEmailResponse{
		Success: true,
		Email:   account.Email,
	})
}

// Me handles getting the current user's profile
// @Summary Get current user profile
// @Description Return the profile of the session owner
// @Tags auth
// @Produce json
// @Success 200 {object} domain.UserProfile
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "session identity not found in context",
		})
		return
	}

	profile, err := h.userService.FindOne(c.Request.Context(), uid.(string))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
