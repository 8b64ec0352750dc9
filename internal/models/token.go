package models

import "time"

// Token use discriminator embedded in every signed token.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// TokenRequest is an inbound request to the token endpoint.
type TokenRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	Scopes       []string
}

// IssuedToken is the response payload for a successful token request.
type IssuedToken struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	Scope        []string `json:"scope"`
}

// TokenClaims is the decoded claim set of an issued token. AppID and
// IssuedBy carry the enhancement data stamped on top of the standard claims:
// the client application the token was issued to and the issuing service.
type TokenClaims struct {
	JTI         string    `json:"jti"`
	Subject     string    `json:"sub"`
	Authorities []string  `json:"authorities"`
	ClientID    string    `json:"client_id"`
	Scope       []string  `json:"scope"`
	TokenUse    string    `json:"token_use"`
	Issuer      string    `json:"iss"`
	IssuedAt    time.Time `json:"iat"`
	ExpiresAt   time.Time `json:"exp"`
	AppID       string    `json:"app_id"`
	IssuedBy    string    `json:"issued_by"`
}
