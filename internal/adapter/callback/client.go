// Package callback posts final analysis results back to an external
// system's callback URL with a bounded retry policy.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/acsgmao/mcp/internal/adapter/agentclient"
	"github.com/acsgmao/mcp/internal/domain"
)

// Client is the callback notifier.
type Client struct {
	url         string
	apiKey      string
	httpClient  *http.Client
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
}

// NewClient creates a notifier. An empty url disables it.
func NewClient(url, apiKey string, timeout, backoff time.Duration, maxAttempts int) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		url:         url,
		apiKey:      apiKey,
		httpClient:  &http.Client{},
		timeout:     timeout,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// Enabled reports whether a callback URL is configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

// Notify posts the payload to the callback URL. Transient failures
// (timeouts, transport errors, 5xx, 429) are retried with doubling backoff up
// to the attempt bound; other 4xx are terminal and never retried.
func (c *Client) Notify(ctx context.Context, payload *domain.CallbackPayload) error {
	if !c.Enabled() {
		return nil
	}

	backoff := c.backoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = c.post(ctx, payload)
		if lastErr == nil {
			return nil
		}
		if !agentclient.IsRetryable(lastErr) {
			return fmt.Errorf("callback rejected permanently: %w", lastErr)
		}
		if attempt == c.maxAttempts {
			break
		}
		log.Printf("WARN: callback attempt %d/%d failed, retrying in %s: %v", attempt, c.maxAttempts, backoff, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("callback failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, payload *domain.CallbackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal callback payload: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to contact callback target: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &agentclient.StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}
	return nil
}
