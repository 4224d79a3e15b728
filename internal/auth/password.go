package auth

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	dErrors "vigil/pkg/domain-errors"
)

// bcrypt silently ignores everything past 72 bytes; truncating explicitly on
// both the hash and verify paths keeps the two in agreement and avoids
// locking out accounts seeded from long env passwords.
const maxPasswordBytes = 72

// VerifyPasswordRequirements enforces the strength policy: at least 8
// characters with one uppercase letter, one lowercase letter, one digit, and
// one symbol outside [A-Za-z0-9]. Pure predicate, no side effects.
func VerifyPasswordRequirements(password string) bool {
	if len([]rune(password)) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// HashPassword returns a bcrypt hash with a per-hash salt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword checks plain against a stored bcrypt hash.
func VerifyPassword(plain, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(plain))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return fmt.Errorf("verify password: %w", err)
	}
	return nil
}

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
