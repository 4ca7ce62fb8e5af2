package identity

import (
	"context"
	"time"
)

// Account is the credential record held by the identity provider. It carries
// no profile data; the profile document lives in the profile store.
type Account struct {
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewAccount carries the fields needed to register an account.
type NewAccount struct {
	DisplayName string
	Email       string
	Password    string
}

// TokenClaims represents session token claims
type TokenClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
}

// IsExpired checks if the token is expired
func (tc TokenClaims) IsExpired() bool {
	return time.Now().Unix() > tc.Exp
}

// Provider is the identity backend: it owns credentials, session tokens and
// email verification state. The rest of the service treats it as opaque.
type Provider interface {
	// CreateAccount registers a new account. Duplicate emails surface as
	// domain.ErrEmailTaken, rejected passwords as domain.ErrWeakPassword.
	CreateAccount(ctx context.Context, acc NewAccount) (*Account, error)

	// VerifyCredentials checks the email/password pair and, on success,
	// returns a signed session token together with the account. Unknown
	// emails and wrong passwords both surface as domain.ErrInvalidCredentials.
	VerifyCredentials(ctx context.Context, email, password string) (string, *Account, error)

	// GetAccountByEmail looks up an account. Misses surface as
	// domain.ErrAccountNotFound.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)

	// GenerateVerificationLink mints a single-use verification token for the
	// account owning email and returns the full link the user should follow.
	GenerateVerificationLink(ctx context.Context, email, redirectURL string) (string, error)

	// ConfirmVerification consumes a verification token and marks the owning
	// account as verified. Unknown, expired or already-consumed tokens
	// surface as domain.ErrInvalidToken.
	ConfirmVerification(ctx context.Context, token string) (*Account, error)

	// ValidateToken parses and verifies a session token.
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}
