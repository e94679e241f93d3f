// ABOUTME: Low-level HTTP client for the structured-data (MediaWiki action) API
// ABOUTME: Handles CSRF token acquisition, form-encoded writes and the single badtoken retry

package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"description-publisher/models"
)

// Token rejection codes the remote uses to report an invalid or expired
// anti-forgery token. Only these are eligible for the single retry.
const (
	errCodeBadToken = "badtoken"
	errCodeNoToken  = "notoken"
)

// maxTokenRetries bounds re-acquisition: one fresh token and one resubmission
// after a token-related rejection, never more.
const maxTokenRetries = 1

// StructuredDataClient performs write operations that require a per-operation
// anti-forgery token. Tokens are acquired fresh on every attempt and never
// cached across calls.
type StructuredDataClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewStructuredDataClient creates a client for the given API base URL.
func NewStructuredDataClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *StructuredDataClient {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &StructuredDataClient{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   2,
			},
		},
	}
}

// SetHTTPClient allows injecting a custom HTTP client (useful for testing with proxies)
func (c *StructuredDataClient) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Submit executes one write operation: acquires a fresh token, merges it into
// the form body under tokenField, posts, and parses the response. Returns the
// parsed result, whether the session was authenticated during the exchange,
// and a transport/parse error if the exchange never produced a result.
//
// A token-related rejection triggers exactly one re-acquisition and
// resubmission; a second rejection is returned in the result for the caller
// to classify.
func (c *StructuredDataClient) Submit(ctx context.Context, endpoint string, query, body url.Values, tokenField string) (*SubmitResult, bool, error) {
	var (
		result        *SubmitResult
		authenticated bool
	)

	for attempt := 0; ; attempt++ {
		token, tokenAuthed, err := c.acquireToken(ctx, endpoint)
		if err != nil {
			return nil, false, fmt.Errorf("token acquisition failed: %w", err)
		}
		authenticated = tokenAuthed

		form := url.Values{}
		for key, values := range body {
			form[key] = values
		}
		form.Set(tokenField, token)

		result, err = c.postWrite(ctx, endpoint, query, form)
		if err != nil {
			return nil, authenticated, err
		}

		if result.RemoteError != nil && isTokenRejection(result.RemoteError.Code) && attempt < maxTokenRetries {
			c.logger.Warn("Anti-forgery token rejected, re-acquiring once",
				"code", result.RemoteError.Code,
				"attempt", attempt+1)
			continue
		}

		return result, authenticated, nil
	}
}

// acquireToken performs the token round-trip against the same service. The
// userinfo block is requested alongside so session authentication can be
// observed without an extra call.
func (c *StructuredDataClient) acquireToken(ctx context.Context, endpoint string) (string, bool, error) {
	query := url.Values{
		"action": {"query"},
		"meta":   {"tokens|userinfo"},
		"type":   {"csrf"},
		"format": {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Token request failed",
			"status_code", resp.StatusCode,
			"response_body", string(body))
		return "", false, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var envelope tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", false, fmt.Errorf("%w: token response: %v", models.ErrUnparseableResponse, err)
	}

	token := envelope.Query.Tokens.CSRFToken
	if token == "" {
		return "", false, fmt.Errorf("%w: token response carried no csrf token", models.ErrUnparseableResponse)
	}

	// The remote flags anonymous sessions with an "anon" marker on userinfo.
	authenticated := envelope.Query.Userinfo != nil && envelope.Query.Userinfo.Anon == nil

	c.logger.Debug("Acquired anti-forgery token",
		"token_length", len(token),
		"authenticated", authenticated)

	return token, authenticated, nil
}

// postWrite submits the form-encoded write and parses the response body.
func (c *StructuredDataClient) postWrite(ctx context.Context, endpoint string, query, form url.Values) (*SubmitResult, error) {
	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create write request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute write request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Write request failed",
			"status_code", resp.StatusCode,
			"response_body", string(body))
		return nil, fmt.Errorf("write request failed with status %d", resp.StatusCode)
	}

	var parsed writeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: write response: %v", models.ErrUnparseableResponse, err)
	}

	return &SubmitResult{
		RemoteError: parsed.Error,
		SuccessFlag: parsed.Success,
	}, nil
}

// isTokenRejection reports whether the remote error explicitly names the
// supplied token as invalid or missing.
func isTokenRejection(code string) bool {
	return code == errCodeBadToken || code == errCodeNoToken
}
