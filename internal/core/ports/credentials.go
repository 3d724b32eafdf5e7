package ports

// PasswordHasher turns a plaintext password into a salted one-way digest.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches digest. A mismatch is false,
	// never an error.
	Verify(password, digest string) bool
}

// TokenIssuer mints a bearer token bound to a user's identity key.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// TokenVerifier checks a bearer token and returns the identity key it names.
// Every failure is reported as domain.ErrInvalidToken.
type TokenVerifier interface {
	Verify(token string) (string, error)
}
