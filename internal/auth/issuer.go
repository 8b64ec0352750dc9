package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avela-io/authserv/internal/clients/directory"
	"github.com/avela-io/authserv/internal/common"
	"github.com/avela-io/authserv/internal/interfaces"
	"github.com/avela-io/authserv/internal/models"
)

// invalidCredentialsMsg is shared by the unknown-user and wrong-password
// paths so responses cannot be used to enumerate usernames.
const invalidCredentialsMsg = "Invalid username or password"

// TokenIssuer validates client and resource-owner credentials and produces
// signed tokens. It holds no per-request state; the registry and signing key
// are read-only after construction.
type TokenIssuer struct {
	registry   *ClientRegistry
	directory  interfaces.DirectoryClient
	verifier   interfaces.CredentialVerifier
	tracker    interfaces.AttemptTracker
	signingKey []byte
	issuer     string
	logger     *common.Logger
	now        func() time.Time
}

// NewTokenIssuer creates a token issuer.
func NewTokenIssuer(registry *ClientRegistry, dir interfaces.DirectoryClient, verifier interfaces.CredentialVerifier, tracker interfaces.AttemptTracker, signing common.SigningConfig, logger *common.Logger) *TokenIssuer {
	return &TokenIssuer{
		registry:   registry,
		directory:  dir,
		verifier:   verifier,
		tracker:    tracker,
		signingKey: []byte(signing.Key),
		issuer:     signing.Issuer,
		logger:     logger,
		now:        time.Now,
	}
}

// Issue handles one token request. Client authentication always runs first:
// when the client itself is not authorized, the resource owner's directory
// record is never touched and no outcome is emitted.
func (t *TokenIssuer) Issue(ctx context.Context, req models.TokenRequest) (*models.IssuedToken, error) {
	client, err := t.registry.Authenticate(req.ClientID, req.ClientSecret)
	if err != nil {
		t.logger.Warn().Str("client_id", req.ClientID).Msg("Client authentication failed")
		return nil, err
	}

	switch req.GrantType {
	case models.GrantPassword, models.GrantRefreshToken:
	default:
		return nil, newError(KindUnsupportedGrant, "grant_type must be 'password' or 'refresh_token'")
	}

	grant, err := t.registry.Authorize(client, req.GrantType, req.Scopes)
	if err != nil {
		return nil, err
	}

	switch grant.GrantType {
	case models.GrantPassword:
		return t.issuePasswordGrant(ctx, grant, req)
	default:
		return t.issueRefreshGrant(grant, req)
	}
}

// issuePasswordGrant authenticates the resource owner and issues tokens.
// Every credential judgment — success or failure — hands exactly one outcome
// to the tracker before issuance proceeds.
func (t *TokenIssuer) issuePasswordGrant(ctx context.Context, grant *models.Grant, req models.TokenRequest) (*models.IssuedToken, error) {
	if req.Username == "" || req.Password == "" {
		return nil, newError(KindInvalidGrant, "username and password are required")
	}

	user, err := t.directory.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			t.logger.Warn().Str("username", req.Username).Msg("Login failed: unknown user")
			t.tracker.OnOutcome(ctx, models.FailureOutcome(req.Username, models.ReasonUnknownUser, grant.Client.ID))
			return nil, newError(KindInvalidGrant, invalidCredentialsMsg)
		}
		if directory.IsUnavailable(err) {
			t.logger.Error().Err(err).Str("username", req.Username).Msg("Directory lookup failed")
			return nil, wrapError(KindDirectoryUnavailable, "User directory is unavailable", err)
		}
		return nil, wrapError(KindDirectoryUnavailable, "User directory lookup failed", err)
	}

	if !user.Enabled {
		// Already locked out. No outcome: the lockout bookkeeping is done and
		// must not be re-triggered.
		t.logger.Warn().Str("username", user.Username).Msg("Login rejected: account disabled")
		return nil, newError(KindAccountDisabled, "Account is disabled")
	}

	if !t.verifier.Verify(req.Password, user.PasswordHash) {
		t.logger.Warn().Str("username", user.Username).Msg("Login failed: bad credentials")
		t.tracker.OnOutcome(ctx, models.FailureOutcome(user.Username, models.ReasonBadCredentials, grant.Client.ID))
		return nil, newError(KindInvalidGrant, invalidCredentialsMsg)
	}

	t.logger.Info().Str("username", user.Username).Str("client_id", grant.Client.ID).Msg("Login success")
	t.tracker.OnOutcome(ctx, models.SuccessOutcome(user, grant.Client.ID))

	return t.buildToken(grant, user.Username, user.Roles)
}

// issueRefreshGrant validates a refresh token and re-derives the claims from
// its embedded subject. The directory is not consulted and no outcome is
// emitted: lockout applies to password logins only.
func (t *TokenIssuer) issueRefreshGrant(grant *models.Grant, req models.TokenRequest) (*models.IssuedToken, error) {
	if req.RefreshToken == "" {
		return nil, newError(KindInvalidGrant, "refresh_token is required")
	}

	claims, err := t.parseToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != models.TokenUseRefresh {
		return nil, newError(KindInvalidToken, "Token is not a refresh token")
	}
	if claims.ClientID != grant.Client.ID {
		return nil, newError(KindInvalidGrant, "Refresh token was issued to a different client")
	}

	t.logger.Info().Str("username", claims.Subject).Str("client_id", grant.Client.ID).Msg("Refresh grant")

	// Carry the scope the refresh token was bound to, not the request's.
	grant.Scopes = claims.Scope
	return t.buildToken(grant, claims.Subject, claims.Authorities)
}

// Introspect verifies signature and expiry of a token and returns its claims.
func (t *TokenIssuer) Introspect(tokenString string) (*models.TokenClaims, error) {
	return t.parseToken(tokenString)
}

// buildToken signs the access token and, when the client is allowed the
// refresh grant, a refresh token with its own lifetime.
func (t *TokenIssuer) buildToken(grant *models.Grant, subject string, authorities []string) (*models.IssuedToken, error) {
	now := t.now()
	client := grant.Client

	accessToken, err := t.sign(subject, authorities, grant.Scopes, client.ID, models.TokenUseAccess, now, client.AccessTokenTTL)
	if err != nil {
		return nil, wrapError(KindInvalidToken, "Failed to sign access token", err)
	}

	issued := &models.IssuedToken{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(client.AccessTokenTTL.Seconds()),
		Scope:       grant.Scopes,
	}

	if client.AllowsGrantType(models.GrantRefreshToken) {
		refreshToken, err := t.sign(subject, authorities, grant.Scopes, client.ID, models.TokenUseRefresh, now, client.RefreshTokenTTL)
		if err != nil {
			return nil, wrapError(KindInvalidToken, "Failed to sign refresh token", err)
		}
		issued.RefreshToken = refreshToken
	}

	return issued, nil
}

// sign creates one HS256 JWT. The app_id and issued_by claims are the
// enhancement data stamped on top of the standard set: which client
// application the token was issued to, and by which service.
func (t *TokenIssuer) sign(subject string, authorities, scopes []string, clientID, tokenUse string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"jti":         uuid.New().String(),
		"sub":         subject,
		"authorities": authorities,
		"client_id":   clientID,
		"scope":       scopes,
		"token_use":   tokenUse,
		"iss":         t.issuer,
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
		"app_id":      clientID,
		"issued_by":   t.issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.signingKey)
}

// parseToken verifies and decodes a previously issued token.
func (t *TokenIssuer) parseToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.Parse(tokenString,
		func(tok *jwt.Token) (interface{}, error) {
			return t.signingKey, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, wrapError(KindInvalidToken, "Token is invalid or expired", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, newError(KindInvalidToken, "Token carries no claims")
	}

	claims := &models.TokenClaims{
		JTI:         stringClaim(mapClaims, "jti"),
		Subject:     stringClaim(mapClaims, "sub"),
		Authorities: stringSliceClaim(mapClaims, "authorities"),
		ClientID:    stringClaim(mapClaims, "client_id"),
		Scope:       stringSliceClaim(mapClaims, "scope"),
		TokenUse:    stringClaim(mapClaims, "token_use"),
		Issuer:      stringClaim(mapClaims, "iss"),
		AppID:       stringClaim(mapClaims, "app_id"),
		IssuedBy:    stringClaim(mapClaims, "issued_by"),
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceClaim(claims jwt.MapClaims, key string) []string {
	raw, ok := claims[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Ensure TokenIssuer implements TokenService
var _ interfaces.TokenService = (*TokenIssuer)(nil)
