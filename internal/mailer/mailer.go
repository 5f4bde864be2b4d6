// Package mailer composes and delivers transactional email through an HTTP
// JSON mail API. Delivery from procedure handlers is fire-and-forget via
// SendAsync; a lost email must never fail the procedure that requested it.
package mailer

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

const defaultTimeout = 15 * time.Second

// Email is one outbound message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// APIClient sends email via an HTTP JSON mail API.
type APIClient struct {
	APIKey     string
	BaseURL    string
	From       string
	HTTPClient *http.Client
}

// NewAPIClient returns a client that posts to the given endpoint with the API key.
func NewAPIClient(apiKey, baseURL, from string) *APIClient {
	return &APIClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		From:       from,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Send posts the email to the mail API. Does not log message bodies.
func (c *APIClient) Send(ctx context.Context, email Email) error {
	if c.APIKey == "" {
		return fmt.Errorf("mailer: API key not configured")
	}
	if email.To == "" {
		return fmt.Errorf("mailer: missing recipient")
	}
	body := map[string]interface{}{
		"from":    c.From,
		"to":      email.To,
		"subject": email.Subject,
		"text":    email.Body,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("mailer: send failed: status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

// sendTimeout is the max time allowed for a single async send.
const sendTimeout = 15 * time.Second

// SendAsync delivers the email in a goroutine, detached from the caller's context,
// so connection teardown cannot abort it. Failures are logged and never returned.
// mailer may be nil; SendAsync then returns immediately.
func SendAsync(mailer Mailer, ctx context.Context, email Email) {
	if mailer == nil {
		return
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		if err := mailer.Send(sendCtx, email); err != nil {
			log.Printf("mailer: async send to %s failed: %v", email.To, err)
		}
	}()
}
