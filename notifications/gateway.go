package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// HTTPGateway sends broadcasts to an external push relay over HTTP. The relay
// owns delivery transport (FCM batching, retries, platform quirks); this
// client only reports per-attempt success or failure.
type HTTPGateway struct {
	url    string
	client *http.Client
}

func NewHTTPGateway(url string) *HTTPGateway {
	return &HTTPGateway{
		url:    url,
		client: http.DefaultClient,
	}
}

var _ Gateway = (*HTTPGateway)(nil)

type broadcastRequest struct {
	RegistrationTokens []string `json:"registrationTokens"`
	Title              string   `json:"title"`
	Body               string   `json:"body"`
}

func (g *HTTPGateway) Broadcast(ctx context.Context, deviceTokens []string, title, body string) error {
	payload, err := json.Marshal(broadcastRequest{
		RegistrationTokens: deviceTokens,
		Title:              title,
		Body:               body,
	})
	if err != nil {
		return errors.Wrap(err, "HTTPGateway.Broadcast marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "HTTPGateway.Broadcast request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "HTTPGateway.Broadcast do")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	return nil
}
