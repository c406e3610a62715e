package notifications_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/varsityhq/varsity-server/notifications"
)

func TestHTTPGatewayBroadcast(t *testing.T) {
	var received struct {
		RegistrationTokens []string `json:"registrationTokens"`
		Title              string   `json:"title"`
		Body               string   `json:"body"`
	}
	var contentType string

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer relay.Close()

	gw := notifications.NewHTTPGateway(relay.URL)
	err := gw.Broadcast(context.Background(), []string{"device-a", "device-b"}, "Exam day", "")
	require.NoError(t, err)

	require.Equal(t, "application/json", contentType)
	require.Equal(t, []string{"device-a", "device-b"}, received.RegistrationTokens)
	require.Equal(t, "Exam day", received.Title)
	require.Empty(t, received.Body)
}

func TestHTTPGatewayNon2xxIsError(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer relay.Close()

	gw := notifications.NewHTTPGateway(relay.URL)
	err := gw.Broadcast(context.Background(), []string{"device-a"}, "Exam day", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestHTTPGatewayUnreachableRelay(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	relay.Close()

	gw := notifications.NewHTTPGateway(relay.URL)
	err := gw.Broadcast(context.Background(), []string{"device-a"}, "Exam day", "")
	require.Error(t, err)
}
