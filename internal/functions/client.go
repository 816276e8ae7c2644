// Package functions implements the client side of the hosted serverless
// functions the dashboard backend delegates to (AI call analysis, email
// dispatch). One Client is constructed at startup and injected wherever
// remote access is needed.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client invokes named remote functions over HTTP.
type Client struct {
	BaseURL    string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a functions client for the given platform base URL.
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Invoke calls the named function with a JSON body and returns the raw
// response payload. A non-2xx response is returned as a *FunctionError
// carrying whatever structured fields the function reported.
//
// No retry, no local timeout beyond the HTTP client's own: one invocation
// per call, it runs to completion or failure.
func (c *Client) Invoke(ctx context.Context, name string, body any) (json.RawMessage, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("functions base URL not configured")
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/functions/v1/%s", c.BaseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.ServiceKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call function %s: %w", name, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read function %s response: %w", name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseFunctionError(name, resp.StatusCode, payload)
	}

	return payload, nil
}
