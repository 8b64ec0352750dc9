package models

import "time"

// Grant types a client application may be allowed to use.
const (
	GrantPassword     = "password"
	GrantRefreshToken = "refresh_token"
)

// ClientApplication is a registered client application. The registry loads
// these once at startup; they are never mutated afterwards.
type ClientApplication struct {
	ID              string        `json:"client_id"`
	SecretHash      string        `json:"-"`
	Scopes          []string      `json:"scopes"`
	GrantTypes      []string      `json:"grant_types"`
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`
}

// AllowsGrantType reports whether the client may use the given grant type.
func (c *ClientApplication) AllowsGrantType(grantType string) bool {
	for _, g := range c.GrantTypes {
		if g == grantType {
			return true
		}
	}
	return false
}

// AllowsScopes reports whether every requested scope is granted to the client.
func (c *ClientApplication) AllowsScopes(scopes []string) bool {
	for _, requested := range scopes {
		found := false
		for _, allowed := range c.Scopes {
			if allowed == requested {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Grant is the result of authorizing a client for a grant type and scope set.
type Grant struct {
	Client    *ClientApplication `json:"client"`
	GrantType string             `json:"grant_type"`
	Scopes    []string           `json:"scopes"`
}
