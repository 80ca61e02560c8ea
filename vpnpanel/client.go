package vpnpanel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Client talks to the VPN panel API to look up provisioned users. Panel
// accounts are keyed by "<prefix>_<telegram_id>".
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	prefix     string
}

// NewClient creates a panel client. baseURL must not have a trailing slash.
func NewClient(baseURL, token, prefix string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		token:   token,
		prefix:  prefix,
	}
}

type panelUser struct {
	Username       string  `json:"username"`
	FirstConnected *string `json:"firstConnected"`
}

type panelResponse struct {
	Response panelUser `json:"response"`
}

// Check implements the service activation verifier: true only when the
// participant's panel account exists and has connected at least once. It
// fails closed: an unknown account, an API error, or an unreachable panel
// all read as "not activated".
func (c *Client) Check(ctx context.Context, telegramID int64) bool {
	username := fmt.Sprintf("%s_%d", c.prefix, telegramID)

	user, err := c.getUserByUsername(ctx, username)
	if err != nil {
		log.WithFields(log.Fields{
			"telegramID": telegramID,
			"username":   username,
		}).WithError(err).Warn("VPN activation check failed, treating as not activated")
		return false
	}
	if user == nil {
		return false
	}

	return user.FirstConnected != nil
}

func (c *Client) getUserByUsername(ctx context.Context, username string) (*panelUser, error) {
	endpoint := fmt.Sprintf("%s/api/users/by-username/%s", c.baseURL, username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build panel request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call panel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No panel account yet
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("panel returned status %d", resp.StatusCode)
	}

	var decoded panelResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode panel response: %w", err)
	}

	return &decoded.Response, nil
}
