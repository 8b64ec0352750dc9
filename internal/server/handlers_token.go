package server

import (
	"net/http"
	"strings"

	"github.com/avela-io/authserv/internal/auth"
	"github.com/avela-io/authserv/internal/models"
)

// clientCredentials extracts client credentials from HTTP Basic auth or,
// failing that, from the form body (client_secret_post style).
func clientCredentials(r *http.Request) (string, string) {
	if id, secret, ok := r.BasicAuth(); ok {
		return id, secret
	}
	return r.FormValue("client_id"), r.FormValue("client_secret")
}

// writeAuthError translates an auth taxonomy error into the RFC 6749 wire
// format. Client faults are 401, resource-owner faults 400, infrastructure
// faults 503.
func writeAuthError(w http.ResponseWriter, err error) {
	kind := auth.KindOf(err)
	description := auth.DescriptionOf(err)

	switch kind {
	case auth.KindInvalidClient:
		writeOAuthError(w, http.StatusUnauthorized, string(kind), description)
	case auth.KindInvalidGrant, auth.KindAccountDisabled, auth.KindUnsupportedGrant:
		writeOAuthError(w, http.StatusBadRequest, string(kind), description)
	case auth.KindDirectoryUnavailable:
		writeOAuthError(w, http.StatusServiceUnavailable, string(kind), description)
	case auth.KindInvalidToken:
		writeOAuthError(w, http.StatusUnauthorized, string(kind), description)
	default:
		writeOAuthError(w, http.StatusInternalServerError, "server_error", "Unexpected error")
	}
}

// handleToken handles POST /oauth/token — the password and refresh_token grants.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "invalid form data")
		return
	}

	clientID, clientSecret := clientCredentials(r)

	var scopes []string
	if raw := strings.TrimSpace(r.FormValue("scope")); raw != "" {
		scopes = strings.Fields(raw)
	}

	req := models.TokenRequest{
		GrantType:    r.FormValue("grant_type"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     r.FormValue("username"),
		Password:     r.FormValue("password"),
		RefreshToken: r.FormValue("refresh_token"),
		Scopes:       scopes,
	}

	issued, err := s.app.Issuer.Issue(r.Context(), req)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	resp := map[string]interface{}{
		"access_token": issued.AccessToken,
		"token_type":   issued.TokenType,
		"expires_in":   issued.ExpiresIn,
		"scope":        strings.Join(issued.Scope, " "),
	}
	if issued.RefreshToken != "" {
		resp["refresh_token"] = issued.RefreshToken
	}
	WriteJSON(w, http.StatusOK, resp)
}

// handleCheckToken handles POST /oauth/check_token — token introspection.
// Any registered client may introspect; resource-owner re-authentication is
// not required.
func (s *Server) handleCheckToken(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "invalid form data")
		return
	}

	clientID, clientSecret := clientCredentials(r)
	if _, err := s.app.Registry.Authenticate(clientID, clientSecret); err != nil {
		writeAuthError(w, err)
		return
	}

	tokenString := r.FormValue("token")
	if tokenString == "" {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			tokenString = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if tokenString == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	claims, err := s.app.Issuer.Introspect(tokenString)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, claims)
}
