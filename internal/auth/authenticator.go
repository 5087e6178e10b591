package auth

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password,
// OAuth, etc.) without changing the service layer code.
type Authenticator interface {
	// Authenticate verifies the operator's credentials.
	// Returns ErrInvalidCredentials if authentication fails.
	Authenticate(username, credential string) error
}
