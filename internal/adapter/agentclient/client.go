// Package agentclient provides the HTTP client for delivering work to
// registered agents.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/acsgmao/mcp/internal/domain"
)

// maxErrorBodyBytes caps how much of a downstream error body is carried
// into error messages and logs.
const maxErrorBodyBytes = 2048

// StatusError reports a non-2xx response from an agent or callback target.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("downstream returned status %d: %s", e.Code, e.Body)
}

// IsRetryable reports whether a delivery error is transient: transport
// failures and timeouts always are, status errors only for 5xx and 429.
func IsRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}
	return err != nil
}

// Result is a successful agent response.
type Result struct {
	StatusCode int
	Body       json.RawMessage
}

// Client is an HTTP client for delivering messages to agents.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new agent client. Per-delivery deadlines come from the
// caller's context, so the underlying client carries no global timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

// Process posts the payload to the agent's /process endpoint and returns the
// parsed JSON response. Non-2xx responses become a *StatusError.
func (c *Client) Process(ctx context.Context, endpoint string, payload *domain.AgentDeliveryPayload) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := strings.TrimSuffix(endpoint, "/") + "/process"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to contact agent: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read agent response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(respBody)
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: snippet}
	}

	if !json.Valid(respBody) {
		// Agents are expected to answer JSON; wrap anything else so the
		// outcome still round-trips through the response list.
		respBody, _ = json.Marshal(string(respBody))
	}

	return &Result{StatusCode: resp.StatusCode, Body: respBody}, nil
}
