package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/varsityhq/varsity-server/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the decoded access token claims
	ContextKeyClaims ContextKey = "claims"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) APIMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
		s.LoggingMiddleware,
	}
}

func (s *Server) AuthedAPIMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return append(s.APIMiddleware(), s.RequireAuth)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.env == "DEV" {
			s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		}
		next(w, r)
	}
}

// RecoverMiddleware converts panics into a generic internal-error response.
// No stack traces reach the caller.
func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("recovered from panic")
				writeError(w, r.URL.Path, http.StatusInternalServerError, CodeInternalError, "internal error")
			}
		}()
		next(w, r)
	}
}

// RequireAuth validates the access token in the Authorization header, rejects
// blacklisted tokens, and injects the decoded claims into the request context.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken := extractAccessToken(r)
		if rawToken == "" {
			writeError(w, r.URL.Path, http.StatusBadRequest, CodeInvalidToken, "missing access token")
			return
		}

		claims, err := s.codec.Decode(rawToken)
		if err != nil || claims.TokenType != token.TypeAccess {
			writeError(w, r.URL.Path, http.StatusBadRequest, CodeInvalidToken, "invalid access token")
			return
		}

		revoked, err := s.blacklist.IsBlacklisted(r.Context(), claims.TokenID)
		if err != nil {
			writeError(w, r.URL.Path, http.StatusInternalServerError, CodeInternalError, "internal error")
			return
		}
		if revoked {
			writeError(w, r.URL.Path, http.StatusUnauthorized, CodeTokenAlreadyBlacklisted, "token has been revoked")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
		next(w, r.WithContext(ctx))
	}
}

// extractAccessToken reads the access token from the Authorization header,
// tolerating a Bearer prefix.
func extractAccessToken(r *http.Request) string {
	header := r.Header.Get(HeaderAuthorization)
	if header == "" {
		return ""
	}
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(header)
}

func claimsFromContext(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims
}
