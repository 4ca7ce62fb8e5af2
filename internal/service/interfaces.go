package service

import (
	"context"
	"time"

	"github.com/shopportal/accounts-service/internal/domain"
	"github.com/shopportal/accounts-service/internal/dto"
	"github.com/shopportal/accounts-service/internal/identity"
)

// LoginResult carries the session token and the profile returned on login.
type LoginResult struct {
	IDToken string
	User    *domain.UserProfile
}

// AuthService defines methods for session operations
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) (*dto.VerificationDispatch, error)
	ConfirmVerification(ctx context.Context, token string) (*identity.Account, error)
	Authenticate(ctx context.Context, token string) (*identity.TokenClaims, error)
}

// UserService defines methods for account provisioning and profile CRUD
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*domain.UserProfile, dto.VerificationDispatch, error)
	FindAll(ctx context.Context) ([]*domain.UserProfile, error)
	FindOne(ctx context.Context, uid string) (*domain.UserProfile, error)
	Update(ctx context.Context, uid string, req *dto.UpdateUserRequest) (*domain.UserProfile, error)
	Remove(ctx context.Context, uid string) (*domain.UserProfile, error)
}

// VerificationMailer resolves a verification link for an account and sends
// it by email, or logs it when no transport is configured.
type VerificationMailer interface {
	Dispatch(ctx context.Context, uid, email string) (dto.VerificationDispatch, error)
}

// SessionBlacklist revokes session tokens ahead of their natural expiry.
type SessionBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}
