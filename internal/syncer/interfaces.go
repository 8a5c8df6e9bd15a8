package syncer

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=interfaces.go -destination=mocks/syncer.gen.go -package=mocks

import (
	"context"

	"github.com/codex-k8s/backlog-notify/internal/backlog"
)

// Tracker reads issues and comments from the issue tracker.
type Tracker interface {
	// ListIssues returns issues of projectID updated since the yyyy-mm-dd date.
	ListIssues(ctx context.Context, since, projectID string) ([]backlog.Issue, error)
	// ListComments returns the comments of one issue.
	ListComments(ctx context.Context, issueKey string) ([]backlog.Comment, error)
}

// Notifier delivers one message per new issue or comment.
type Notifier interface {
	NotifyIssue(ctx context.Context, issue backlog.Issue) error
	NotifyComment(ctx context.Context, comment backlog.Comment, issue backlog.Issue) error
}
