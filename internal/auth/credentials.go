package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/avela-io/authserv/internal/interfaces"
)

// BcryptVerifier implements interfaces.CredentialVerifier using bcrypt.
// The cost factor only applies to newly produced hashes; verification reads
// the cost and salt embedded in the stored hash, so raising the cost never
// invalidates existing credentials.
type BcryptVerifier struct {
	cost int
}

// NewBcryptVerifier creates a verifier with the given cost factor.
// Costs outside bcrypt's valid range fall back to the library default.
func NewBcryptVerifier(cost int) *BcryptVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVerifier{cost: cost}
}

// Hash produces a salted adaptive hash of the secret.
func (v *BcryptVerifier) Hash(secret string) (string, error) {
	b := []byte(secret)
	if len(b) > 72 {
		b = b[:72] // bcrypt input limit
	}
	hash, err := bcrypt.GenerateFromPassword(b, v.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// Verify checks a secret against a stored hash.
func (v *BcryptVerifier) Verify(secret, hash string) bool {
	b := []byte(secret)
	if len(b) > 72 {
		b = b[:72]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), b) == nil
}

// Ensure BcryptVerifier implements CredentialVerifier
var _ interfaces.CredentialVerifier = (*BcryptVerifier)(nil)
