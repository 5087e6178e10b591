package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrAuthDisabled       = errors.New("operator authentication is not configured")
)

// PasswordAuthenticator checks a single operator account against a bcrypt
// hash taken from the configuration.
type PasswordAuthenticator struct {
	operator     string
	passwordHash []byte
}

// NewPasswordAuthenticator creates an authenticator for one operator.
// An empty hash disables logins.
func NewPasswordAuthenticator(operator, passwordHash string) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		operator:     operator,
		passwordHash: []byte(passwordHash),
	}
}

// Authenticate verifies the username and password.
func (a *PasswordAuthenticator) Authenticate(username, credential string) error {
	if len(a.passwordHash) == 0 {
		return ErrAuthDisabled
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.operator)) == 1
	// Always run bcrypt so timing does not reveal whether the username matched.
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(credential))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword validates and hashes a new operator password.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
