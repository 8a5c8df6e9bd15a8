// Package notify formats tracker activity as chat messages and delivers them to a Slack webhook.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/codex-k8s/backlog-notify/internal/backlog"
)

// Formatter renders issues and comments as fixed multi-line message blocks.
type Formatter struct {
	// BaseURL is the tracker space URL used for links.
	BaseURL string
	// Location is the zone timestamps are rendered in; UTC when nil.
	Location *time.Location
}

// Issue renders a newly created issue.
func (f Formatter) Issue(issue backlog.Issue) string {
	var description string
	if issue.Description != nil {
		description = *issue.Description
	}
	lines := []string{
		":open_mouth: " + issue.CreatedUser,
		":page_facing_up: " + issue.Summary,
		":clock3: " + f.timestamp(issue.Created),
		":globe_with_meridians: " + backlog.IssueURL(f.BaseURL, issue.Key),
		description,
	}
	return strings.Join(lines, "\n")
}

// Comment renders a new comment together with its parent issue summary.
func (f Formatter) Comment(comment backlog.Comment, issue backlog.Issue) string {
	lines := []string{
		":open_mouth: " + comment.CreatedUser,
		":clock3: " + f.timestamp(comment.Created),
		":globe_with_meridians: " + backlog.CommentURL(f.BaseURL, issue.Key, comment.ID),
		":page_facing_up: " + issue.Summary,
		"--",
		comment.Content,
	}
	return strings.Join(lines, "\n")
}

// timestamp renders an ISO-8601 value as e.g. "2024年1月2日 9:05:03".
// Values that do not parse are returned unchanged.
func (f Formatter) timestamp(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return fmt.Sprintf("%d年%d月%d日 %d:%02d:%02d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}
