package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/varsityhq/varsity-server/auth"
	"github.com/varsityhq/varsity-server/calendar"
	fakeeventrepo "github.com/varsityhq/varsity-server/calendar/repofake"
	"github.com/varsityhq/varsity-server/identity"
	"github.com/varsityhq/varsity-server/internal/config"
	apperrors "github.com/varsityhq/varsity-server/internal/errors"
	fakememberrepo "github.com/varsityhq/varsity-server/members/repofake"
	"github.com/varsityhq/varsity-server/notifications"
	fakenotificationrepo "github.com/varsityhq/varsity-server/notifications/repofake"
	"github.com/varsityhq/varsity-server/server"
	"github.com/varsityhq/varsity-server/token"
)

const (
	testSubjectID = "u1"
	testEventID   = "event-1"
)

// fakeVerifier accepts identity tokens of the form "id-token:<subject>" and
// authorization codes of the form "code:<subject>".
type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, rawIDToken string) (*identity.Identity, error) {
	subject, ok := strings.CutPrefix(rawIDToken, "id-token:")
	if !ok {
		return nil, apperrors.ErrOAuthProcessing
	}
	return &identity.Identity{SubjectID: subject, Name: "Test User"}, nil
}

func (fakeVerifier) VerifyAuthorizationCode(_ context.Context, code string) (*identity.Identity, error) {
	subject, ok := strings.CutPrefix(code, "code:")
	if !ok {
		return nil, apperrors.ErrOAuthProcessing
	}
	return &identity.Identity{SubjectID: subject, Name: "Test User"}, nil
}

type serverFixture struct {
	server *server.Server
	codec  *token.Codec
}

func setupServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	codec := token.NewCodec(token.NewHMACSigner("test-secret"), token.WithIssuer("test"))
	memberRepo := fakememberrepo.NewFakeMemberRepo()
	blacklist := token.NewInMemoryBlacklist()

	authService, err := auth.NewService(memberRepo, codec, blacklist, 30*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	events := fakeeventrepo.NewFakeEventRepo()
	events.Put(&calendar.Event{ID: testEventID, Title: "Exam day"})
	notificationService, err := notifications.NewService(fakenotificationrepo.NewFakeNotificationRepo(), events, memberRepo)
	require.NoError(t, err)

	srv, err := server.New(config.New(), server.Deps{
		Verifier:      fakeVerifier{},
		CodeVerifier:  fakeVerifier{},
		Auth:          authService,
		Codec:         codec,
		Blacklist:     blacklist,
		Notifications: notificationService,
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)

	return &serverFixture{server: srv, codec: codec}
}

func (f *serverFixture) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) login(t *testing.T) (accessToken, refreshToken string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, server.RouteLoginApple, `{"identityToken":"id-token:`+testSubjectID+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	authHeader := rec.Header().Get(server.HeaderAuthorization)
	require.True(t, strings.HasPrefix(authHeader, "Bearer "))
	refreshToken = rec.Header().Get(server.HeaderRefreshToken)
	require.NotEmpty(t, refreshToken)
	return strings.TrimPrefix(authHeader, "Bearer "), refreshToken
}

func TestLoginApple(t *testing.T) {
	f := setupServerFixture(t)

	access, refresh := f.login(t)

	claims, err := f.codec.Decode(access)
	require.NoError(t, err)
	require.Equal(t, testSubjectID, claims.SubjectID)
	require.Equal(t, token.TypeAccess, claims.TokenType)

	claims, err = f.codec.Decode(refresh)
	require.NoError(t, err)
	require.Equal(t, token.TypeRefresh, claims.TokenType)
}

func TestLoginAppleBadAssertion(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteLoginApple, `{"identityToken":"bogus"}`, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, server.CodeOAuthProcessingError, body["code"])
	require.NotEmpty(t, body["timestamp"])
}

func TestLoginAppleCode(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteLoginAppleCode, `{"authorizationCode":"code:`+testSubjectID+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	authHeader := rec.Header().Get(server.HeaderAuthorization)
	require.True(t, strings.HasPrefix(authHeader, "Bearer "))

	claims, err := f.codec.Decode(strings.TrimPrefix(authHeader, "Bearer "))
	require.NoError(t, err)
	require.Equal(t, testSubjectID, claims.SubjectID)
}

func TestLoginAppleCodeBadCode(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteLoginAppleCode, `{"authorizationCode":"bogus"}`, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, server.CodeOAuthProcessingError, body["code"])
}

func TestRefreshRotation(t *testing.T) {
	f := setupServerFixture(t)

	_, refresh := f.login(t)

	rec := f.do(t, http.MethodPost, server.RouteLoginRefresh, "", map[string]string{server.HeaderRefreshToken: refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(server.HeaderAuthorization))

	// Replay of the consumed refresh token
	rec = f.do(t, http.MethodPost, server.RouteLoginRefresh, "", map[string]string{server.HeaderRefreshToken: refresh})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, server.CodeInvalidRefreshToken, body["code"])
}

func TestRefreshMissingHeader(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteLoginRefresh, "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusCheckFlow(t *testing.T) {
	f := setupServerFixture(t)

	access, _ := f.login(t)

	rec := f.do(t, http.MethodPost, server.RouteLoginStatus, "", map[string]string{server.HeaderAuthorization: "Bearer " + access})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, server.RouteLoginStatus, "", map[string]string{server.HeaderAuthorization: "Bearer garbage"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutFlow(t *testing.T) {
	f := setupServerFixture(t)

	access, _ := f.login(t)
	authHeaders := map[string]string{server.HeaderAuthorization: "Bearer " + access}

	rec := f.do(t, http.MethodPost, server.RouteMemberLogout, "", authHeaders)
	require.Equal(t, http.StatusOK, rec.Code)

	// Second logout with the now-blacklisted token is rejected at the boundary
	rec = f.do(t, http.MethodPost, server.RouteMemberLogout, "", authHeaders)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, server.CodeTokenAlreadyBlacklisted, body["code"])

	// Status check now reports the revocation
	rec = f.do(t, http.MethodPost, server.RouteLoginStatus, "", authHeaders)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutMissingToken(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteMemberLogout, "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMember(t *testing.T) {
	f := setupServerFixture(t)

	access, refresh := f.login(t)
	authHeaders := map[string]string{server.HeaderAuthorization: "Bearer " + access}

	rec := f.do(t, http.MethodDelete, server.RouteMemberDelete, "", authHeaders)
	require.Equal(t, http.StatusOK, rec.Code)

	// Neither token survives deletion
	rec = f.do(t, http.MethodPost, server.RouteLoginStatus, "", authHeaders)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, server.RouteLoginRefresh, "", map[string]string{server.HeaderRefreshToken: refresh})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	f := setupServerFixture(t)

	access, _ := f.login(t)
	authHeaders := map[string]string{server.HeaderAuthorization: "Bearer " + access}

	rec := f.do(t, http.MethodPost, server.RouteNotifications,
		`{"eventId":"`+testEventID+`","targetDate":"2025-03-02","deviceTokens":["device-a"]}`, authHeaders)
	require.Equal(t, http.StatusOK, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id, _ := created["notificationId"].(string)
	require.NotEmpty(t, id)
	require.Equal(t, true, created["active"])

	rec = f.do(t, http.MethodGet, server.RouteNotifications, "", authHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	rec = f.do(t, http.MethodDelete, "/notifications/"+id, "", authHeaders)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/notifications/"+id, "", authHeaders)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationsRequireAuth(t *testing.T) {
	f := setupServerFixture(t)

	rec := f.do(t, http.MethodGet, server.RouteNotifications, "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationUnknownEvent(t *testing.T) {
	f := setupServerFixture(t)

	access, _ := f.login(t)
	authHeaders := map[string]string{server.HeaderAuthorization: "Bearer " + access}

	rec := f.do(t, http.MethodPost, server.RouteNotifications,
		`{"eventId":"missing","targetDate":"2025-03-02","deviceTokens":["device-a"]}`, authHeaders)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
