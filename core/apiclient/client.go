// Package apiclient is a Go client for the REST surface of a hosted backend
// speaking snake_case JSON. Request bodies are deep-converted from camelCase
// on the way out, responses are converted back on the way in, and an expired
// access token triggers exactly one silent refresh-and-retry.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"musewave/core/transform"
)

// APIError is a non-2xx response. Message holds the server's own description
// when one could be extracted from the body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// TokenStore holds the bearer token pair. Implementations must be safe for
// concurrent use; the client reads tokens on every request and replaces them
// after a refresh.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(access, refresh string)
	Clear()
}

// MemoryTokenStore is the default in-process TokenStore.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func (s *MemoryTokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryTokenStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryTokenStore) SetTokens(access, refresh string) {
	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.mu.Unlock()
}

func (s *MemoryTokenStore) Clear() {
	s.SetTokens("", "")
}

// Client dispatches requests against a base URL.
type Client struct {
	baseURL     string
	refreshPath string
	httpClient  *http.Client
	tokens      TokenStore
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenStore replaces the default in-memory token store.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

// WithRefreshPath overrides the token refresh endpoint.
func WithRefreshPath(path string) Option {
	return func(c *Client) { c.refreshPath = path }
}

// NewClient creates an API client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		refreshPath: "/api/auth/refresh",
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		tokens: &MemoryTokenStore{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens exposes the token store, so callers can seed it after login.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// Request sends a JSON request. body (if non-nil) is marshalled and its keys
// deep-converted to snake_case; the decoded response comes back with
// camelCase keys. A 401 triggers one refresh-and-retry; a failed refresh
// clears the stored tokens and returns the original 401.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}) (interface{}, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, method, path, payload, "application/json")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens.RefreshToken() != "" {
		resp.Body.Close()
		if refreshErr := c.refresh(ctx); refreshErr != nil {
			c.tokens.Clear()
			return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "session expired"}
		}
		resp, err = c.do(ctx, method, path, payload, "application/json")
		if err != nil {
			return nil, err
		}
	}

	return decodeResponse(resp)
}

// RequestMultipart sends a multipart body untouched: no case translation and
// no Content-Type override beyond the caller-provided boundary header. The
// single 401 refresh-retry still applies, so the body is buffered up front.
func (c *Client) RequestMultipart(ctx context.Context, method, path string, body io.Reader, contentType string) (interface{}, error) {
	payload, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read multipart body: %w", err)
	}

	resp, err := c.do(ctx, method, path, payload, contentType)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens.RefreshToken() != "" {
		resp.Body.Close()
		if refreshErr := c.refresh(ctx); refreshErr != nil {
			c.tokens.Clear()
			return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "session expired"}
		}
		resp, err = c.do(ctx, method, path, payload, contentType)
		if err != nil {
			return nil, err
		}
	}

	return decodeResponse(resp)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, contentType string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// refresh exchanges the stored refresh token for a new pair. Called at most
// once per request.
func (c *Client) refresh(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"refresh_token": c.tokens.RefreshToken(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.refreshPath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if tokens.AccessToken == "" {
		return fmt.Errorf("refresh response missing access token")
	}

	refresh := tokens.RefreshToken
	if refresh == "" {
		refresh = c.tokens.RefreshToken()
	}
	c.tokens.SetTokens(tokens.AccessToken, refresh)
	return nil
}

func encodeBody(body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	// Round-trip through generic JSON so the key transform sees plain maps.
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to re-decode request body: %w", err)
	}
	return json.Marshal(transform.ToSnakeValue(generic))
}

func decodeResponse(resp *http.Response) (interface{}, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(raw, resp.Status),
		}
	}

	if len(raw) == 0 {
		return nil, nil
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return transform.ToCamelValue(generic), nil
}

// extractErrorMessage pulls a human-readable message out of an error body,
// checking message, detail, error and the first non_field_errors entry before
// falling back to the HTTP status line.
func extractErrorMessage(raw []byte, status string) string {
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"message", "detail", "error"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
		if list, ok := body["non_field_errors"].([]interface{}); ok && len(list) > 0 {
			if s, ok := list[0].(string); ok && s != "" {
				return s
			}
		}
	}
	return status
}
