package auth

import (
	"fmt"

	"github.com/avela-io/authserv/internal/common"
	"github.com/avela-io/authserv/internal/interfaces"
	"github.com/avela-io/authserv/internal/models"
)

// dummySecretHash is a bcrypt hash of a random throwaway value. Unknown
// client ids are verified against it so that lookup failures cost the same
// as a real secret mismatch and do not reveal client existence.
const dummySecretHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ClientRegistry holds the registered client applications. Content is fixed
// at startup; there is no dynamic registration.
type ClientRegistry struct {
	clients  map[string]*models.ClientApplication
	verifier interfaces.CredentialVerifier
	logger   *common.Logger
}

// NewClientRegistry builds the registry from configuration entries.
// Entries carrying a plaintext secret are hashed here, once, so nothing
// stores or compares plaintext afterwards.
func NewClientRegistry(entries []common.ClientEntry, verifier interfaces.CredentialVerifier, logger *common.Logger) (*ClientRegistry, error) {
	clients := make(map[string]*models.ClientApplication, len(entries))
	for _, e := range entries {
		if e.ClientID == "" {
			return nil, fmt.Errorf("client entry with empty client_id")
		}
		if _, exists := clients[e.ClientID]; exists {
			return nil, fmt.Errorf("duplicate client_id '%s'", e.ClientID)
		}

		secretHash := e.SecretHash
		if secretHash == "" {
			if e.Secret == "" {
				return nil, fmt.Errorf("client '%s' has neither secret nor secret_hash", e.ClientID)
			}
			h, err := verifier.Hash(e.Secret)
			if err != nil {
				return nil, fmt.Errorf("failed to hash secret for client '%s': %w", e.ClientID, err)
			}
			secretHash = h
		}

		grantTypes := e.GrantTypes
		if len(grantTypes) == 0 {
			grantTypes = []string{models.GrantPassword, models.GrantRefreshToken}
		}

		clients[e.ClientID] = &models.ClientApplication{
			ID:              e.ClientID,
			SecretHash:      secretHash,
			Scopes:          e.Scopes,
			GrantTypes:      grantTypes,
			AccessTokenTTL:  e.GetAccessTokenTTL(),
			RefreshTokenTTL: e.GetRefreshTokenTTL(),
		}
		logger.Debug().Str("client_id", e.ClientID).Msg("Registered client application")
	}

	return &ClientRegistry{
		clients:  clients,
		verifier: verifier,
		logger:   logger,
	}, nil
}

// Authenticate validates the client id and secret. The same invalid_client
// error comes back for an unknown id and a wrong secret.
func (r *ClientRegistry) Authenticate(clientID, clientSecret string) (*models.ClientApplication, error) {
	client, ok := r.clients[clientID]
	if !ok {
		// Burn a comparison so unknown ids are not faster than bad secrets.
		r.verifier.Verify(clientSecret, dummySecretHash)
		return nil, newError(KindInvalidClient, "Invalid client credentials")
	}
	if !r.verifier.Verify(clientSecret, client.SecretHash) {
		return nil, newError(KindInvalidClient, "Invalid client credentials")
	}
	return client, nil
}

// Authorize checks that the client may use the requested grant type and
// scopes. An empty scope request defaults to the client's full scope set.
func (r *ClientRegistry) Authorize(client *models.ClientApplication, grantType string, scopes []string) (*models.Grant, error) {
	if !client.AllowsGrantType(grantType) {
		return nil, newError(KindInvalidClient, fmt.Sprintf("Client is not authorized for grant type '%s'", grantType))
	}

	granted := scopes
	if len(granted) == 0 {
		granted = client.Scopes
	} else if !client.AllowsScopes(granted) {
		return nil, newError(KindInvalidClient, "Requested scope exceeds client grant")
	}

	return &models.Grant{
		Client:    client,
		GrantType: grantType,
		Scopes:    granted,
	}, nil
}

// Lookup returns a registered client by id without authenticating it.
func (r *ClientRegistry) Lookup(clientID string) (*models.ClientApplication, bool) {
	c, ok := r.clients[clientID]
	return c, ok
}
