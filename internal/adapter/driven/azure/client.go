// Package azure implements the ChatCompleter port against an Azure OpenAI
// chat-completions deployment with an Azure AI Search data source.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ericfisherdev/oncoassist/internal/domain/model"
	"github.com/ericfisherdev/oncoassist/internal/domain/port/driven"
)

// maxResponseSize limits how much of a response body is read.
const maxResponseSize = 10 * 1024 * 1024

// Compile-time interface satisfaction check.
var _ driven.ChatCompleter = (*Client)(nil)

// Client posts questions to the chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	logger     *slog.Logger
}

// NewClient creates a Client for the production deployment. The underlying
// http.Client has no timeout: a request runs until the transport fails or
// the caller's context is canceled.
func NewClient(logger *slog.Logger) *Client {
	c, _ := NewClientWithHTTPClient(&http.Client{}, DefaultEndpoint, logger)
	return c
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing against an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	u.Path += "/openai/deployments/" + deployment + "/chat/completions"
	q := u.Query()
	q.Set("api-version", apiVersion)
	u.RawQuery = q.Encode()

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		url:        u.String(),
		logger:     logger,
	}, nil
}

// URL returns the full chat-completions URL requests are sent to.
func (c *Client) URL() string {
	return c.url
}

// Complete issues one POST with the fixed payload and returns the decoded
// body. secret is trimmed before it is placed in the api-key header.
func (c *Client) Complete(ctx context.Context, question, secret string) (*model.RawResponse, error) {
	body, err := json.Marshal(newChatRequest(question))
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", strings.TrimSpace(secret))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("chat completion transport failure", "error", err)
		return nil, &TransportError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{err: fmt.Errorf("read response body: %w", err)}
	}

	c.logger.Info("chat completion response",
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
		"bytes", len(data),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, data)
	}

	var raw model.RawResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrMalformedResponse, err)
	}
	return &raw, nil
}

// newAPIError builds an APIError, lifting error.message out of the body when
// the provider sent its standard envelope.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}
