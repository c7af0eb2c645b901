package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores input past 72 bytes, so longer secrets are rejected.
	MaxPasswordLength = 72
	PasswordCost      = bcrypt.DefaultCost
)

// HashPassword binds a plaintext secret to a salted bcrypt credential.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", NewValidationError("password must be at most 72 bytes")
		}
		return "", NewInternalError("password.hash", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored credential.
// A malformed credential never matches.
func CheckPassword(password, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("password must be at least 6 characters")
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError("password must be at most 72 bytes")
	}
	return nil
}
