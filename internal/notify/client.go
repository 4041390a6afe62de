package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client posts operator notifications to a webhook endpoint as JSON. A nil
// client or an empty URL disables delivery, so callers can wire it
// unconditionally.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a notification client. token, when non-empty, is sent as
// a bearer token.
func NewClient(url, token string, logger *slog.Logger) *Client {
	return &Client{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type notification struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notify delivers one notification. Failures are logged and swallowed: a
// dropped warning must never fail the operation that raised it.
func (c *Client) Notify(ctx context.Context, subject, body string) {
	if c == nil || c.url == "" {
		return
	}

	payload, err := json.Marshal(notification{Subject: subject, Body: body})
	if err != nil {
		c.logger.Error("marshal notification", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		c.logger.Error("create notification request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("send notification", "subject", subject, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("notification rejected",
			"subject", subject,
			"status", resp.StatusCode,
			"response", string(respBody),
		)
	}
}
