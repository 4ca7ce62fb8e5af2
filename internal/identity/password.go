package identity

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength mirrors the provider-side password policy.
const minPasswordLength = 6

// hashPassword hashes a password using bcrypt
func hashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// checkPasswordHash compares a password with a hash
func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// sanitizeEmail normalizes an email for lookups and storage.
func sanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
