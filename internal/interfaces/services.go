package interfaces

import (
	"context"

	"github.com/avela-io/authserv/internal/models"
)

// TokenService issues and introspects signed tokens.
type TokenService interface {
	// Issue validates the client and (for the password grant) the resource
	// owner, then builds and signs a token
	Issue(ctx context.Context, req models.TokenRequest) (*models.IssuedToken, error)

	// Introspect verifies signature and expiry of a previously issued token
	// and returns its claims
	Introspect(tokenString string) (*models.TokenClaims, error)
}

// AttemptTracker observes authentication outcomes and maintains the
// per-user failure counter and lockout flag in the directory.
type AttemptTracker interface {
	// OnOutcome consumes one authentication outcome. It never fails the
	// surrounding authentication request; directory errors are logged.
	OnOutcome(ctx context.Context, outcome models.AuthenticationOutcome)
}

// CredentialVerifier wraps the one-way password hash primitive.
type CredentialVerifier interface {
	// Hash produces an adaptive salted hash of the secret
	Hash(secret string) (string, error)

	// Verify checks a secret against a stored hash
	Verify(secret, hash string) bool
}
