package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codex-k8s/backlog-notify/internal/backlog"
)

const (
	deliveryTimeout = 30 * time.Second
	maxErrorBody    = 1024
)

// DeliveryError is returned when the webhook answers with a non-2xx status.
type DeliveryError struct {
	// StatusCode is the HTTP status returned by the webhook.
	StatusCode int
	// Body is a truncated copy of the response body.
	Body string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("slack webhook: status %d: %s", e.StatusCode, e.Body)
}

// IsDeliveryError reports whether err was caused by a rejected webhook call.
func IsDeliveryError(err error) bool {
	var target *DeliveryError
	return errors.As(err, &target)
}

type payload struct {
	Text string `json:"text"`
}

// Slack posts one message per call to an incoming webhook. There is no
// batching, rate limiting or retry.
type Slack struct {
	logger     *slog.Logger
	httpClient *http.Client
	hookURL    string
	formatter  Formatter
}

// NewSlack returns a Slack notifier for hookURL. A nil httpClient uses a default client.
func NewSlack(logger *slog.Logger, hookURL string, formatter Formatter, httpClient *http.Client) (*Slack, error) {
	hookURL = strings.TrimSpace(hookURL)
	if hookURL == "" {
		return nil, fmt.Errorf("slack webhook URL is empty")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: deliveryTimeout}
	}
	return &Slack{
		logger:     logger,
		httpClient: httpClient,
		hookURL:    hookURL,
		formatter:  formatter,
	}, nil
}

// NotifyIssue delivers a message for a new issue.
func (s *Slack) NotifyIssue(ctx context.Context, issue backlog.Issue) error {
	if err := s.Post(ctx, s.formatter.Issue(issue)); err != nil {
		return fmt.Errorf("notify issue %s: %w", issue.Key, err)
	}
	return nil
}

// NotifyComment delivers a message for a new comment on issue.
func (s *Slack) NotifyComment(ctx context.Context, comment backlog.Comment, issue backlog.Issue) error {
	if err := s.Post(ctx, s.formatter.Comment(comment, issue)); err != nil {
		return fmt.Errorf("notify comment %d on %s: %w", comment.ID, issue.Key, err)
	}
	return nil
}

// Post sends text as the payload of a single webhook call.
func (s *Slack) Post(ctx context.Context, text string) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload{Text: text}); err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}
	size := buf.Len()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.hookURL, buf)
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return fmt.Errorf("slack webhook: status %d: read response: %w", resp.StatusCode, err)
		}
		return &DeliveryError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	s.logger.Debug("slack message delivered", "bytes", size, "status", resp.StatusCode)
	return nil
}
