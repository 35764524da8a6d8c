// Package sheets appends rows to an external spreadsheet webhook. The
// spreadsheet is an optional mirror: callers log append failures and move
// on, they never fail a request over it.
package sheets

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

// ErrDisabled is returned when no webhook URL is configured.
var ErrDisabled = errors.New("sheets: not configured")

// Client posts rows to a spreadsheet webhook endpoint.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
}

// New creates a sheet client. An empty URL yields a disabled client whose
// Append returns ErrDisabled.
func New(url, token string) *Client {
	return &Client{
		url:   strings.TrimSpace(url),
		token: token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether a webhook URL is set.
func (c *Client) Configured() bool { return c.url != "" }

// Append adds one row to the named sheet.
func (c *Client) Append(ctx context.Context, sheet string, values []string) error {
	if !c.Configured() {
		return ErrDisabled
	}

	payload, err := json.Marshal(map[string]any{
		"sheet":  sheet,
		"values": values,
	})
	if err != nil {
		return fmt.Errorf("sheets append: encode row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sheets append: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheets append: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sheets append: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
