// Package twilio sends WhatsApp messages through the Twilio Messages API.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ignite/lead-relay/internal/pkg/httpretry"
)

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

// Client delivers messages over the WhatsApp channel via Twilio.
// It satisfies dispatch.ChannelSender.
type Client struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	http       httpretry.Doer
}

// New creates a Twilio client. from is the sender's WhatsApp number
// (the "whatsapp:" prefix is added if missing). maxRetries bounds
// retries of transient provider failures; <= 0 selects the httpretry
// default.
func New(accountSID, authToken, from string, maxRetries int) *Client {
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		from:       whatsappAddr(from),
		baseURL:    defaultBaseURL,
		http:       httpretry.New(&http.Client{Timeout: 15 * time.Second}, maxRetries),
	}
}

// Send posts one message to destination and returns the Twilio message
// SID. A 4xx from Twilio (invalid number, unverified sandbox recipient)
// comes back as an error carrying Twilio's own message.
func (c *Client) Send(ctx context.Context, destination, message string) (string, error) {
	if c.accountSID == "" || c.authToken == "" {
		return "", fmt.Errorf("twilio: credentials not configured")
	}

	form := url.Values{}
	form.Add("From", c.from)
	form.Add("To", whatsappAddr(destination))
	form.Add("Body", message)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("twilio: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio: send request: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return "", fmt.Errorf("twilio: error %d: %s", apiErr.Code, apiErr.Message)
		}
		return "", fmt.Errorf("twilio: status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("twilio: decode response: %w", err)
	}
	return result.SID, nil
}

// whatsappAddr prefixes a phone number for the WhatsApp channel.
func whatsappAddr(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
