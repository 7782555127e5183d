// Package github is a minimal client for the three GitHub REST endpoints the
// sync pipeline consumes, plus the pure aggregation of their payloads into
// the statistics bundle stored on a Profile.
//
// The client performs no retries and no caching: retry policy belongs to the
// caller, and each sync wants a live snapshot anyway. Every request is bound
// by the caller's context, so timeouts and cancellation are the caller's too.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	defaultBaseURL = "https://api.github.com"

	// GitHub rejects requests without a User-Agent, and asks API consumers
	// to identify themselves with a stable one.
	userAgent    = "devhub"
	acceptHeader = "application/vnd.github.v3+json"
)

// APIError is any failure talking to the GitHub API.
//
// Both HTTP-level failures (4xx, 5xx) and transport failures surface as the
// same kind so callers have a single branch point; StatusCode carries the
// original status for caller-side policy (it is 0 for network errors).
// Message is GitHub's own error message or the status text — never a raw
// response body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("github: %s", e.Message)
	}
	return fmt.Sprintf("github: status %d: %s", e.StatusCode, e.Message)
}

// Client calls the GitHub REST API with bearer-token authorization.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client. Pass nil to use http.DefaultClient; callers
// that want a transport-level timeout pass their own *http.Client.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
	}
}

// User fetches the authenticated user's profile (GET /user).
func (c *Client) User(ctx context.Context, token string) (*User, error) {
	var u User
	if err := c.get(ctx, token, "/user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Repositories fetches the authenticated user's repositories
// (GET /user/repos), most recently updated first, up to 100 in a single
// page. We deliberately do not paginate further: the profile snapshot caps
// out at one page, matching the store's single-document size expectations.
func (c *Client) Repositories(ctx context.Context, token string) ([]Repository, error) {
	query := url.Values{
		"sort":      {"updated"},
		"direction": {"desc"},
		"per_page":  {"100"},
	}

	var repos []Repository
	if err := c.get(ctx, token, "/user/repos", query, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// Events fetches the user's recent public events
// (GET /users/{login}/events). GitHub returns them newest-first.
func (c *Client) Events(ctx context.Context, token, login string) ([]Event, error) {
	var events []Event
	if err := c.get(ctx, token, "/users/"+url.PathEscape(login)+"/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// get performs an authenticated GET and decodes the JSON response into v.
// All failures come back as *APIError.
func (c *Client) get(ctx context.Context, token, path string, query url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("building request for %s: %v", path, err)}
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failure: no status code to carry.
		return &APIError{Message: fmt.Sprintf("requesting %s: %v", path, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decoding %s response: %v", path, err),
		}
	}

	return nil
}

// errorMessage extracts GitHub's "message" field from an error response.
// Falls back to the HTTP status text; never returns the raw body, which can
// be large and isn't something we want to bubble up to users.
func errorMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Message != "" {
		return body.Message
	}
	return http.StatusText(resp.StatusCode)
}
