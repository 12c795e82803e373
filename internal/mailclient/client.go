package mailclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client calls the external mail-delivery microservice.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. With skip set, sends are logged instead of delivered
// (dev mode).
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Health probes the delivery service.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail service unhealthy: %s", resp.Status)
	}
	return nil
}

// SendMagicLink asks the delivery service to mail a sign-in link.
func (c *Client) SendMagicLink(ctx context.Context, email, link string) error {
	if c.Skip {
		log.Printf("mail skip: magic link for %s: %s", email, link)
		return nil
	}
	if email == "" {
		return fmt.Errorf("recipient email required")
	}

	body, _ := json.Marshal(map[string]string{
		"to":       email,
		"template": "magic-link",
		"link":     link,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("mail service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail service error %s: %s", resp.Status, string(bodyBytes))
	}
	return nil
}
