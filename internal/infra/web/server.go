package web

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-pix-packs/internal/usecase"
)

// Server is the read-only admin/reporting API plus the metrics endpoint.
// It never writes to the ledger.
type Server struct {
	statsUC usecase.StatsUseCase
	apiKey  string
	auth    *AuthManager
	log     *zerolog.Logger
}

func NewServer(statsUC usecase.StatsUseCase, apiKey, jwtSecret string, sessionTTL time.Duration, secureCookies bool, logger *zerolog.Logger) *Server {
	return &Server{
		statsUC: statsUC,
		apiKey:  apiKey,
		auth:    NewAuthManager(jwtSecret, secureCookies, sessionTTL),
		log:     logger,
	}
}

// Router builds the chi router for the admin API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/v1/login", s.loginHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/api/v1/stats", statsHandler(s.statsUC))
		r.Get("/api/v1/payments/pending", pendingHandler(s.statsUC))
		r.Get("/api/v1/payments/active", activeHandler(s.statsUC))
	})

	return r
}

// loginHandler exchanges the API key for a session cookie.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if !s.keyMatches(r.Header.Get("Authorization")) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if _, err := s.auth.Mint(w); err != nil {
		s.log.Error().Err(err).Msg("minting admin session failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authMiddleware accepts either the bearer API key or a valid session cookie.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if s.keyMatches(r.Header.Get("Authorization")) {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := s.auth.Verify(r); err == nil {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

func (s *Server) keyMatches(authHeader string) bool {
	if s.apiKey == "" || authHeader == "" {
		return false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(parts[1]), []byte(s.apiKey)) == 1
}
