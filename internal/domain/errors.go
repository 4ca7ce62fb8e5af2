package domain

import "errors"

// Error kinds surfaced by services and mapped to HTTP statuses once, in the
// handler layer.
var (
	// ErrInvalidCredentials is returned when the identity provider rejects
	// an email/password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountNotFound is returned when no account or profile document
	// exists for the given identifier.
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmailTaken is an identity-provider rejection for duplicate emails.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrWeakPassword is an identity-provider rejection for passwords below
	// the provider's minimum length.
	ErrWeakPassword = errors.New("password does not meet provider requirements")

	// ErrPersistenceInconsistency signals that a profile document re-read
	// found nothing even though the preceding write reported success.
	ErrPersistenceInconsistency = errors.New("profile document missing after write")

	// ErrEmailDispatch is returned when the mail transport itself fails.
	ErrEmailDispatch = errors.New("verification email dispatch failed")

	// ErrInvalidToken is returned for malformed, expired, or already
	// consumed verification tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)
