// Package backlog provides a minimal read-only client for the Backlog issue tracker REST API.
package backlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PageSize is the fixed number of records requested per call. Only the first
// page is ever read.
const PageSize = 100

const (
	issuesPath   = "api/v2/issues"
	commentsPath = "api/v2/issues/%s/comments"

	requestTimeout = 30 * time.Second
	maxErrorBody   = 2048
)

// StatusError is returned when the tracker answers with a non-2xx status.
type StatusError struct {
	// Endpoint is the API path that failed.
	Endpoint string
	// StatusCode is the HTTP status returned.
	StatusCode int
	// Body is a truncated copy of the response body.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backlog %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// ParseError is returned when a response body is not valid JSON or lacks required fields.
type ParseError struct {
	// Endpoint is the API path whose response was malformed.
	Endpoint string
	// Index is the position of the offending record, or -1 for the document itself.
	Index int
	// Field names the missing or invalid field, when known.
	Field string
	// Err is the underlying decoding error.
	Err error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("backlog %s: decode response: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("backlog %s: record %d: %v", e.Endpoint, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsStatusError reports whether err was caused by a non-2xx tracker response.
func IsStatusError(err error) bool {
	var target *StatusError
	return errors.As(err, &target)
}

// IsParseError reports whether err was caused by a malformed tracker response.
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// Client calls the issue and comment list endpoints of one Backlog space.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient validates the space URL and API key and returns a Client.
func NewClient(logger *slog.Logger, baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backlog base URL is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid backlog base URL %q: %w", baseURL, err)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("backlog API key is empty")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		logger:     logger,
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized space URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListIssues returns issues of projectID updated since the given yyyy-mm-dd
// date, oldest update first, capped at PageSize.
func (c *Client) ListIssues(ctx context.Context, since, projectID string) ([]Issue, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("project id is empty")
	}
	query := url.Values{}
	query.Set("projectId[]", projectID)
	query.Set("updatedSince", since)
	query.Set("sort", "updated")
	query.Set("order", "asc")
	query.Set("count", strconv.Itoa(PageSize))

	var raw []issueResponse
	if err := c.get(ctx, issuesPath, query, &raw); err != nil {
		return nil, err
	}

	out := make([]Issue, 0, len(raw))
	for i, r := range raw {
		issue, err := r.toIssue()
		if err != nil {
			return nil, newRecordError(issuesPath, i, err)
		}
		out = append(out, issue)
	}
	return out, nil
}

// ListComments returns the first page of comments of one issue.
func (c *Client) ListComments(ctx context.Context, issueKey string) ([]Comment, error) {
	if strings.TrimSpace(issueKey) == "" {
		return nil, fmt.Errorf("issue key is empty")
	}
	query := url.Values{}
	query.Set("count", strconv.Itoa(PageSize))

	endpoint := fmt.Sprintf(commentsPath, url.PathEscape(issueKey))
	var raw []commentResponse
	if err := c.get(ctx, endpoint, query, &raw); err != nil {
		return nil, err
	}

	out := make([]Comment, 0, len(raw))
	for i, r := range raw {
		comment, err := r.toComment()
		if err != nil {
			return nil, newRecordError(endpoint, i, err)
		}
		out = append(out, comment)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	c.logger.Debug("backlog request", "endpoint", endpoint, "query", query.Encode())

	query.Set("apiKey", c.apiKey)
	reqURL := c.baseURL + "/" + endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create backlog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backlog %s: %w", endpoint, redact(err, c.apiKey))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backlog %s: read response: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{Endpoint: endpoint, Index: -1, Err: err}
	}
	return nil
}

func newRecordError(endpoint string, index int, err error) *ParseError {
	pe := &ParseError{Endpoint: endpoint, Index: index, Err: err}
	var fe *fieldError
	if errors.As(err, &fe) {
		pe.Field = fe.field
	}
	return pe
}

// redactedError hides the API key in the message of a transport error while
// keeping the original error reachable through errors.Is and errors.As.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

// redact strips the API key from transport errors, which embed the query-encoded request URL.
func redact(err error, apiKey string) error {
	if apiKey == "" {
		return err
	}
	msg := err.Error()
	for _, form := range []string{url.QueryEscape(apiKey), apiKey} {
		msg = strings.ReplaceAll(msg, form, "REDACTED")
	}
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, err: err}
}
