// Package mailer sends transactional e-mail through an HTTP send API.
// Like the spreadsheet mirror it is optional and best-effort.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("mailer: not configured")

// Mail is one outgoing message.
type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Client posts mail to the send endpoint of an e-mail API.
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
}

// New creates a mail client. An empty API key yields a disabled client.
func New(baseURL, apiKey, from string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		from:    from,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether the client can send.
func (c *Client) Configured() bool { return c.apiKey != "" && c.baseURL != "" }

// Send delivers one message.
func (c *Client) Send(ctx context.Context, m Mail) error {
	if !c.Configured() {
		return ErrDisabled
	}
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("mailer: recipient is required")
	}

	payload, err := json.Marshal(map[string]string{
		"from":    c.from,
		"to":      m.To,
		"subject": m.Subject,
		"text":    m.Text,
	})
	if err != nil {
		return fmt.Errorf("mailer: encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("mailer: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailer: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
