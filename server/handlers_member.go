package server

import (
	"net/http"

	apperrors "github.com/varsityhq/varsity-server/internal/errors"
	"github.com/varsityhq/varsity-server/token"
)

// LogoutHandler blacklists the caller's access and refresh tokens. An already
// blacklisted access token is rejected here, before the orchestrator runs, so
// repeated logouts fail fast.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.authenticatedClaims(w, r, RouteMemberLogout)
		if !ok {
			return
		}

		err := s.auth.Logout(r.Context(), claims)
		switch {
		case err == nil:
			writeJSON(w, RouteMemberLogout, http.StatusOK, map[string]string{"message": "logged out"})
		case apperrors.Is(err, apperrors.ErrMemberNotFound):
			writeError(w, RouteMemberLogout, http.StatusBadRequest, CodeMemberNotFound, "member not found")
		default:
			s.log.Error().Err(err).Msg("logout failed")
			writeError(w, RouteMemberLogout, http.StatusInternalServerError, CodeInternalError, "logout failed")
		}
	}
}

// DeleteMemberHandler removes the member record and invalidates every
// outstanding token for the caller.
func (s *Server) DeleteMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.authenticatedClaims(w, r, RouteMemberDelete)
		if !ok {
			return
		}

		if err := s.auth.DeleteMember(r.Context(), claims); err != nil {
			s.log.Error().Err(err).Msg("member deletion failed")
			writeError(w, RouteMemberDelete, http.StatusInternalServerError, CodeInternalError, "member deletion failed")
			return
		}
		writeJSON(w, RouteMemberDelete, http.StatusOK, map[string]string{"message": "member deleted"})
	}
}

// authenticatedClaims validates the Authorization header for the member
// endpoints: the token must decode, be an access token, and not be
// blacklisted yet.
func (s *Server) authenticatedClaims(w http.ResponseWriter, r *http.Request, route string) (*token.Claims, bool) {
	rawToken := extractAccessToken(r)
	if rawToken == "" {
		writeError(w, route, http.StatusBadRequest, CodeInvalidToken, "missing access token")
		return nil, false
	}

	claims, err := s.codec.Decode(rawToken)
	if err != nil || claims.TokenType != token.TypeAccess {
		writeError(w, route, http.StatusBadRequest, CodeInvalidToken, "invalid access token")
		return nil, false
	}

	revoked, err := s.blacklist.IsBlacklisted(r.Context(), claims.TokenID)
	if err != nil {
		writeError(w, route, http.StatusInternalServerError, CodeInternalError, "internal error")
		return nil, false
	}
	if revoked {
		writeError(w, route, http.StatusBadRequest, CodeTokenAlreadyBlacklisted, "token already blacklisted")
		return nil, false
	}
	return claims, true
}
