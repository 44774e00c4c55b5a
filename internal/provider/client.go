// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/chatexport/internal/model"
)

// Configuration constants for provider API clients.
const (
	// DefaultTimeout is the default timeout for API requests. A failed or
	// slow fetch surfaces to the caller; there is no retry of an export.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 32 * 1024 * 1024 // 32MB; transcripts with images get large
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared HTTP client for all provider requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrAuthUnavailable indicates no access credential is configured or
	// the backend rejected the one we sent.
	ErrAuthUnavailable = errors.New("no usable session token for provider")

	// ErrConversationNotFound indicates the id resolved to nothing.
	ErrConversationNotFound = errors.New("conversation not found")
)

// APIError represents a non-success response from a provider backend.
type APIError struct {
	Provider model.Provider
	Status   int
	Message  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API error (HTTP %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s API error (HTTP %d)", e.Provider, e.Status)
}

// =============================================================================
// FETCHER INTERFACE
// =============================================================================

// Result is one fetched conversation: the parsed, linearized transcript and
// the raw payload it was built from (for raw JSON export).
type Result struct {
	Conversation *model.Conversation
	Raw          []byte
}

// Fetcher retrieves one conversation by id.
type Fetcher interface {
	// Provider identifies which chat application this fetcher talks to.
	Provider() model.Provider

	// Fetch retrieves and linearizes the conversation. All errors are
	// terminal for the current export attempt.
	Fetch(ctx context.Context, conversationID string) (*Result, error)
}

// =============================================================================
// SHARED CLIENT
// =============================================================================

// client carries what every provider fetcher needs: base URL, bearer
// token, and a polite request rate.
type client struct {
	provider model.Provider
	baseURL  string
	token    string
	limiter  *rate.Limiter
}

func newClient(p model.Provider, baseURL, token string) *client {
	return &client{
		provider: p,
		baseURL:  baseURL,
		token:    token,
		// One request per second with a small burst keeps repeated exports
		// from tripping backend rate limits.
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// getJSON performs an authenticated GET and returns the body.
func (c *client) getJSON(ctx context.Context, path string) ([]byte, error) {
	if c.token == "" {
		return nil, ErrAuthUnavailable
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "chatexport/0.1")

	resp, err := sharedHTTPClient.Do(req)

	// SECURITY: Clear the Authorization header after the request so the
	// token never reaches logs via the request object.
	req.Header.Del("Authorization")

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, body)
	}

	return body, nil
}

// statusError maps an HTTP status to the terminal error kinds callers
// check with errors.Is.
func (c *client) statusError(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", ErrAuthUnavailable, status)
	case http.StatusNotFound:
		return fmt.Errorf("%w: HTTP %d", ErrConversationNotFound, status)
	default:
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return &APIError{Provider: c.provider, Status: status, Message: msg}
	}
}

// TokenFingerprint returns a short SHA-256 fingerprint of the session
// token for status display.
// SECURITY: Never expose token fragments - use a fingerprint instead.
func (c *client) TokenFingerprint() string {
	if c.token == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.token))
	return hex.EncodeToString(h[:4])
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", int64(MaxResponseSize))
	}
	return body, nil
}
