// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the client for the onfin compliance agent backend.
//
// The backend exposes a small HTTP API: a chat endpoint that accepts a user
// message plus a thread identifier and returns the agent's reply, and a
// health endpoint for liveness checks. This package implements the client
// for communicating with that API.
package api

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

	"github.com/rs/zerolog/log"
)

// Configuration constants for the agent API.
const (
	// DefaultBaseURL is the base URL of a locally running agent backend.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout is the default timeout for chat requests. Agent turns
	// can involve several tool round-trips on the server side, so this is
	// deliberately generous.
	DefaultTimeout = 120 * time.Second

	// HealthTimeout is the timeout for health check requests.
	HealthTimeout = 5 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared HTTP transport for all agent API requests.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// Error variables for common agent API errors.
var (
	// ErrUnavailable indicates the backend could not be reached at all.
	ErrUnavailable = errors.New("agent backend unavailable")

	// ErrEmptyReply indicates the backend returned a success status but no
	// usable reply text.
	ErrEmptyReply = errors.New("agent returned an empty reply")

	// ErrUnhealthy indicates the health endpoint reported a non-ok status.
	ErrUnhealthy = errors.New("agent backend unhealthy")
)

// APIError represents a non-success HTTP response from the agent backend.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("agent API error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("agent API error (HTTP %d)", e.Status)
}

// ChatRequest is the request body for the chat endpoint.
type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

// ToolCall describes a single tool invocation made by the agent while
// producing its reply. The structure is reported for diagnostics only.
type ToolCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// ChatResponse is the response body from the chat endpoint.
//
// The reply text lives in Response. ToolCalls lists the tools the agent used
// during the turn; callers that only need the reply can ignore it.
type ChatResponse struct {
	Response  string     `json:"response"`
	ToolCalls []ToolCall `json:"tool_calls"`
}

// HealthResponse is the response body from the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// OK reports whether the health endpoint declared the service healthy.
func (h *HealthResponse) OK() bool {
	return strings.EqualFold(h.Status, "healthy") || strings.EqualFold(h.Status, "ok")
}

// errorResponse is the error body FastAPI-style backends return.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Client is a client for the onfin agent backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new agent API client pointed at the given base URL.
// An empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   DefaultTimeout,
		},
		userAgent: "onfin-tui/0.1.0",
	}
}

// WithTimeout sets the request timeout for chat requests.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client. Primarily for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the base URL this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends a user message to the agent and returns the agent's reply.
//
// The threadID groups messages into a server-side conversation; callers
// must send the same threadID for every message of one session and a fresh
// one after a session reset. Any non-2xx response is returned as an error;
// there are no partial successes.
func (c *Client) Chat(ctx context.Context, message, threadID string) (*ChatResponse, error) {
	reqBody := ChatRequest{
		Message:  message,
		ThreadID: threadID,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	log.Debug().Str("thread_id", threadID).Int("bytes", len(bodyBytes)).Msg("chat request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("chat request failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("chat response")

	// Any non-2xx status is a failed request.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromResponse(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if strings.TrimSpace(chatResp.Response) == "" {
		return nil, ErrEmptyReply
	}

	return &chatResp, nil
}

// Health checks the liveness of the agent backend.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp.StatusCode, body)
	}

	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}

	if !health.OK() {
		return &health, fmt.Errorf("%w: status %q", ErrUnhealthy, health.Status)
	}

	return &health, nil
}

// readResponse reads the response body with a size limit.
//
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}

	return body, nil
}

// errorFromResponse converts an HTTP error response into an *APIError,
// pulling the detail message out of the body when one is present.
func errorFromResponse(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		return &APIError{Status: statusCode, Detail: errResp.Detail}
	}

	detail := strings.TrimSpace(string(body))
	const maxDetail = 200
	if len(detail) > maxDetail {
		detail = detail[:maxDetail]
	}
	return &APIError{Status: statusCode, Detail: detail}
}
