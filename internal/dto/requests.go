package dto

import (
	"encoding/json"

	"github.com/shopportal/accounts-service/internal/domain"
)

// CreateUserRequest provisions a provider account plus its profile document.
type CreateUserRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
}

// UpdateUserRequest carries the partial fields shallow-merged over an
// existing profile document. Nil fields are left untouched.
type UpdateUserRequest struct {
	FullName    *string            `json:"fullName"`
	Email       *string            `json:"email"`
	PhoneNumber *string            `json:"phoneNumber"`
	Role        *domain.Role       `json:"role"`
	Purchases   *[]json.RawMessage `json:"purchases"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ResendVerificationRequest asks for a fresh verification email.
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerificationDispatch summarizes one verification-email attempt. Logged and
// Link are set only when SMTP is unconfigured and the link was logged for
// manual use.
type VerificationDispatch struct {
	Success bool   `json:"success"`
	Logged  bool   `json:"logged,omitempty"`
	Link    string `json:"link,omitempty"`
}

// CreateUserResponse is the re-read profile plus the email dispatch summary.
type CreateUserResponse struct {
	VerificationDispatch
	User *domain.UserProfile `json:"user"`
}

// LoginResponse carries the provider token and the caller's profile.
type LoginResponse struct {
	IDToken string              `json:"idToken"`
	User    *domain.UserProfile `json:"user"`
}

// VerifyEmailResponse acknowledges a consumed verification link.
type VerifyEmailResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
}

// SuccessResponse represents a bare success acknowledgement.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
