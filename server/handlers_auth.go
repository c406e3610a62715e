package server

import (
	"encoding/json"
	"net/http"

	"github.com/varsityhq/varsity-server/auth"
	"github.com/varsityhq/varsity-server/identity"
	apperrors "github.com/varsityhq/varsity-server/internal/errors"
)

type loginRequest struct {
	IdentityToken string `json:"identityToken"`
	DisplayName   string `json:"displayName"`
}

// setTokenHeaders returns the pair as custom response headers; clients
// resubmit them as Authorization and RefreshToken on subsequent calls.
func setTokenHeaders(w http.ResponseWriter, pair *auth.TokenPair) {
	w.Header().Set(HeaderAuthorization, "Bearer "+pair.AccessToken)
	w.Header().Set(HeaderRefreshToken, pair.RefreshToken)
}

// LoginAppleHandler verifies the Apple identity assertion and issues a
// credential pair for the verified subject.
func (s *Server) LoginAppleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IdentityToken == "" {
			writeError(w, RouteLoginApple, http.StatusBadRequest, CodeBadRequest, "missing identity token")
			return
		}

		verified, err := s.verifier.Verify(r.Context(), req.IdentityToken)
		if err != nil {
			s.log.Warn().Err(err).Msg("apple identity verification failed")
			writeError(w, RouteLoginApple, http.StatusInternalServerError, CodeOAuthProcessingError, "login failed")
			return
		}

		s.completeLogin(w, r, RouteLoginApple, verified, req.DisplayName)
	}
}

type loginCodeRequest struct {
	AuthorizationCode string `json:"authorizationCode"`
	DisplayName       string `json:"displayName"`
}

// LoginAppleCodeHandler is the web login variant: the authorization code is
// exchanged with Apple server-side and the returned identity token verified
// before the session is issued.
func (s *Server) LoginAppleCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AuthorizationCode == "" {
			writeError(w, RouteLoginAppleCode, http.StatusBadRequest, CodeBadRequest, "missing authorization code")
			return
		}

		verified, err := s.codeVerifier.VerifyAuthorizationCode(r.Context(), req.AuthorizationCode)
		if err != nil {
			s.log.Warn().Err(err).Msg("apple code exchange failed")
			writeError(w, RouteLoginAppleCode, http.StatusInternalServerError, CodeOAuthProcessingError, "login failed")
			return
		}

		s.completeLogin(w, r, RouteLoginAppleCode, verified, req.DisplayName)
	}
}

func (s *Server) completeLogin(w http.ResponseWriter, r *http.Request, route string, verified *identity.Identity, displayName string) {
	if displayName == "" {
		displayName = verified.Name
	}

	pair, err := s.auth.Login(r.Context(), verified.SubjectID, displayName)
	if err != nil {
		s.log.Error().Err(err).Msg("login failed")
		writeError(w, route, http.StatusInternalServerError, CodeInternalError, "login failed")
		return
	}

	setTokenHeaders(w, pair)
	writeJSON(w, route, http.StatusOK, pair)
}

// RefreshHandler exchanges the RefreshToken header for a new pair.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken := r.Header.Get(HeaderRefreshToken)
		if refreshToken == "" {
			writeError(w, RouteLoginRefresh, http.StatusBadRequest, CodeInvalidRefreshToken, "missing refresh token")
			return
		}

		pair, err := s.auth.Refresh(r.Context(), refreshToken)
		switch {
		case err == nil:
			setTokenHeaders(w, pair)
			writeJSON(w, RouteLoginRefresh, http.StatusOK, pair)
		case apperrors.Is(err, apperrors.ErrInvalidRefreshToken):
			writeError(w, RouteLoginRefresh, http.StatusBadRequest, CodeInvalidRefreshToken, "invalid refresh token")
		case apperrors.Is(err, apperrors.ErrMemberNotFound):
			writeError(w, RouteLoginRefresh, http.StatusNotFound, CodeMemberNotFound, "member not found")
		default:
			s.log.Error().Err(err).Msg("token refresh failed")
			writeError(w, RouteLoginRefresh, http.StatusInternalServerError, CodeInternalError, "token refresh failed")
		}
	}
}

// StatusHandler reports whether the presented access token is a live session.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken := extractAccessToken(r)
		if rawToken == "" {
			writeError(w, RouteLoginStatus, http.StatusBadRequest, CodeInvalidToken, "missing access token")
			return
		}

		err := s.auth.StatusCheck(r.Context(), rawToken)
		switch {
		case err == nil:
			writeJSON(w, RouteLoginStatus, http.StatusOK, map[string]bool{"loggedIn": true})
		case apperrors.Is(err, apperrors.ErrInvalidToken):
			writeError(w, RouteLoginStatus, http.StatusBadRequest, CodeInvalidToken, "invalid token")
		case apperrors.Is(err, apperrors.ErrTokenAlreadyBlacklisted):
			writeError(w, RouteLoginStatus, http.StatusUnauthorized, CodeTokenAlreadyBlacklisted, "token has been revoked")
		default:
			s.log.Error().Err(err).Msg("status check failed")
			writeError(w, RouteLoginStatus, http.StatusInternalServerError, CodeInternalError, "status check failed")
		}
	}
}
