// Package openai implements generation and embedding against any
// OpenAI-compatible REST API (OpenAI, LM Studio, Ollama, vLLM).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/animgen"
)

// DefaultBaseURL is the public OpenAI endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Default model names.
const (
	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 32 << 20

// Client holds the connection settings shared by Generator and Embedder.
type Client struct {
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
// Local servers usually accept an empty apiKey.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// post sends body as JSON to path and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return animgen.Errorf(animgen.EUNAVAILABLE, "cannot reach %s: %v", c.BaseURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("cannot parse response from %s: %w", path, err)
	}
	return nil
}

// statusError maps an HTTP failure onto animgen error codes.
func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	}

	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return animgen.Errorf(animgen.EUNAVAILABLE, "API unavailable (HTTP %d): %s", status, msg)
	case status == http.StatusNotFound:
		return animgen.Errorf(animgen.ENOTFOUND, "API: %s", msg)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return animgen.Errorf(animgen.EINVALID, "API rejected request: %s", msg)
	default:
		return animgen.Errorf(animgen.EINTERNAL, "API error (HTTP %d): %s", status, msg)
	}
}
