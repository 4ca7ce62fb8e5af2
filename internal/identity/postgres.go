package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopportal/accounts-service/internal/domain"
	"github.com/shopportal/accounts-service/pkg/database"
)

// postgresProvider implements Provider on top of Postgres.
type postgresProvider struct {
	db              *database.Postgres
	tokens          *tokenIssuer
	bcryptCost      int
	verificationTTL time.Duration
}

// NewPostgresProvider creates the Postgres-backed identity provider.
func NewPostgresProvider(db *database.Postgres, secret string, sessionTTL, verificationTTL time.Duration, bcryptCost int) Provider {
	return &postgresProvider{
		db:              db,
		tokens:          newTokenIssuer(secret, sessionTTL),
		bcryptCost:      bcryptCost,
		verificationTTL: verificationTTL,
	}
}

// CreateAccount registers a new account
func (p *postgresProvider) CreateAccount(ctx context.Context, acc NewAccount) (*Account, error) {
	if len(acc.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, domain.ErrWeakPassword)
	}

	passwordHash, err := hashPassword(acc.Password, p.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &Account{
		UID:         uuid.New().String(),
		Email:       sanitizeEmail(acc.Email),
		DisplayName: acc.DisplayName,
		CreatedAt:   time.Now().UTC(),
	}
	account.UpdatedAt = account.CreatedAt

	query := `
		INSERT INTO accounts (uid, email, display_name, password_hash, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = p.db.DB.ExecContext(ctx, query,
		account.UID,
		account.Email,
		account.DisplayName,
		passwordHash,
		account.EmailVerified,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return nil, fmt.Errorf("account with email %s already exists: %w", account.Email, domain.ErrEmailTaken)
			}
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// VerifyCredentials checks an email/password pair and issues a session token
func (p *postgresProvider) VerifyCredentials(ctx context.Context, email, password string) (string, *Account, error) {
	account, passwordHash, err := p.getByEmail(ctx, sanitizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, fmt.Errorf("no account for email %s: %w", email, domain.ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	if !checkPasswordHash(password, passwordHash) {
		return "", nil, fmt.Errorf("password mismatch for %s: %w", email, domain.ErrInvalidCredentials)
	}

	token, err := p.tokens.Issue(account.UID, account.Email)
	if err != nil {
		return "", nil, err
	}

	return token, account, nil
}

// GetAccountByEmail retrieves an account by email
func (p *postgresProvider) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	account, _, err := p.getByEmail(ctx, sanitizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with email %s not found: %w", email, domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return account, nil
}

// GenerateVerificationLink mints a single-use verification token and returns
// the link the account owner should follow.
func (p *postgresProvider) GenerateVerificationLink(ctx context.Context, email, redirectURL string) (string, error) {
	account, err := p.GetAccountByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	token := hex.EncodeToString(raw)

	query := `
		INSERT INTO email_verification_tokens (id, account_uid, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	now := time.Now().UTC()
	_, err = p.db.DB.ExecContext(ctx, query,
		uuid.New().String(),
		account.UID,
		hashToken(token),
		now.Add(p.verificationTTL),
		now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to store verification token: %w", err)
	}

	return fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(redirectURL, "/"), url.QueryEscape(token)), nil
}

// ConfirmVerification consumes a verification token and marks the owning
// account as verified.
func (p *postgresProvider) ConfirmVerification(ctx context.Context, token string) (*Account, error) {
	claim := `
		DELETE FROM email_verification_tokens
		WHERE token_hash = $1 AND expires_at > $2
		RETURNING account_uid
	`

	var accountUID string
	err := p.db.DB.QueryRowContext(ctx, claim, hashToken(token), time.Now().UTC()).Scan(&accountUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification token unknown or expired: %w", domain.ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to claim verification token: %w", err)
	}

	update := `
		UPDATE accounts
		SET email_verified = TRUE, updated_at = $2
		WHERE uid = $1
		RETURNING uid, email, display_name, email_verified, created_at, updated_at
	`

	account := &Account{}
	err = p.db.DB.QueryRowContext(ctx, update, accountUID, time.Now().UTC()).Scan(
		&account.UID,
		&account.Email,
		&account.DisplayName,
		&account.EmailVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s gone while confirming verification: %w", accountUID, domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to mark account verified: %w", err)
	}

	return account, nil
}

// ValidateToken parses and verifies a session token
func (p *postgresProvider) ValidateToken(_ context.Context, token string) (*TokenClaims, error) {
	return p.tokens.Validate(token)
}

func (p *postgresProvider) getByEmail(ctx context.Context, email string) (*Account, string, error) {
	query := `
		SELECT uid, email, display_name, password_hash, email_verified, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`

	account := &Account{}
	var passwordHash string

	err := p.db.DB.QueryRowContext(ctx, query, email).Scan(
		&account.UID,
		&account.Email,
		&account.DisplayName,
		&passwordHash,
		&account.EmailVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, "", err
	}

	return account, passwordHash, nil
}

// hashToken stores only a digest of verification tokens at rest.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
