// Package twilio is a thin wrapper around the Twilio Messages REST API.
// It sends one SMS per call; queueing, retries across runs and recipient
// selection live with the caller.
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/graymont/rent-reminder/internal/config"
	"github.com/graymont/rent-reminder/internal/pkg/httpretry"
)

// ErrEmptyPhoneNumber is returned when a send is attempted with no
// destination number. Callers treat this as a skip, not a delivery failure.
var ErrEmptyPhoneNumber = errors.New("phone number is empty")

const messagesPath = "/2010-04-01/Accounts/%s/Messages.json"

// Client is a Twilio Messages API client.
type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new Twilio API client.
func NewClient(cfg config.TwilioConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// FromNumber returns the configured sending number.
func (c *Client) FromNumber() string { return c.fromNumber }

// SendMessage sends a single SMS to the given number.
func (c *Client) SendMessage(ctx context.Context, to, body string) (*MessageResult, error) {
	if strings.TrimSpace(to) == "" {
		return nil, ErrEmptyPhoneNumber
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	endpoint := c.baseURL + fmt.Sprintf(messagesPath, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil {
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
		}
		return nil, apiErr
	}

	var result MessageResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return &result, nil
}
