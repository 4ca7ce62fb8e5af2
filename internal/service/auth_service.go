package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopportal/accounts-service/internal/domain"
	"github.com/shopportal/accounts-service/internal/dto"
	"github.com/shopportal/accounts-service/internal/identity"
	"github.com/shopportal/accounts-service/internal/store"
	"go.uber.org/zap"
)

// authService implements AuthService
type authService struct {
	provider   identity.Provider
	profiles   store.ProfileStore
	mailer     VerificationMailer
	blacklist  SessionBlacklist
	logger     *zap.Logger
	sessionTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	provider identity.Provider,
	profiles store.ProfileStore,
	mailer VerificationMailer,
	blacklist SessionBlacklist,
	logger *zap.Logger,
	sessionTTL time.Duration,
) AuthService {
	return &authService{
		provider:   provider,
		profiles:   profiles,
		mailer:     mailer,
		blacklist:  blacklist,
		logger:     logger,
		sessionTTL: sessionTTL,
	}
}

// Login verifies credentials and returns the session token plus the caller's
// profile document.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error) {
	token, account, err := s.provider.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx, account.UID)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}

		// the account exists but its document is gone, serve a minimal
		// profile rather than locking the user out
		s.logger.Warn("profile document missing at login", zap.String("uid", account.UID))
		profile = &domain.UserProfile{
			UID:       account.UID,
			Email:     account.Email,
			FullName:  account.DisplayName,
			CreatedAt: account.CreatedAt,
			LastLogin: time.Now().UTC(),
		}
		profile.Normalize()

		return &LoginResult{IDToken: token, User: profile}, nil
	}

	profile.LastLogin = time.Now().UTC()
	if err := s.profiles.Set(ctx, account.UID, profile); err != nil {
		s.logger.Warn("failed to record last login",
			zap.String("uid", account.UID),
			zap.Error(err),
		)
	}

	return &LoginResult{IDToken: token, User: profile}, nil
}

// Logout revokes the session token for the remainder of its lifetime.
// Revocation is best-effort, logout always succeeds.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.blacklist.Add(ctx, token, s.sessionTTL); err != nil {
		s.logger.Warn("failed to blacklist session token", zap.Error(err))
	}

	return nil
}

// ResendVerification re-sends the verification email for an existing account.
// Transport failures surface in the dispatch payload, not as request errors.
func (s *authService) ResendVerification(ctx context.Context, email string) (*dto.VerificationDispatch, error) {
	account, err := s.provider.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	dispatch, err := s.mailer.Dispatch(ctx, account.UID, account.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrEmailDispatch) {
			return nil, err
		}
		s.logger.Warn("verification email resend failed",
			zap.String("uid", account.UID),
			zap.Error(err),
		)
	}

	return &dispatch, nil
}

// ConfirmVerification consumes a verification token and marks the owning
// account as verified.
func (s *authService) ConfirmVerification(ctx context.Context, token string) (*identity.Account, error) {
	return s.provider.ConfirmVerification(ctx, token)
}

// Authenticate validates a session token against signature, expiry and the
// logout blacklist.
func (s *authService) Authenticate(ctx context.Context, token string) (*identity.TokenClaims, error) {
	blacklisted, err := s.blacklist.Contains(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check session blacklist: %w", err)
	}
	if blacklisted {
		return nil, errors.New("session token is revoked")
	}

	claims, err := s.provider.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	return claims, nil
}
