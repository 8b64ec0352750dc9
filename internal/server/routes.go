package server

import "net/http"

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Token issuance and introspection
	mux.HandleFunc("/oauth/token", s.handleToken)
	mux.HandleFunc("/oauth/check_token", s.handleCheckToken)

	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)
}
