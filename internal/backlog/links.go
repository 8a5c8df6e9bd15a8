package backlog

import (
	"strconv"
	"strings"
)

// IssueURL returns the browser URL of an issue.
func IssueURL(baseURL, issueKey string) string {
	return strings.TrimRight(baseURL, "/") + "/view/" + issueKey
}

// CommentURL returns the browser URL of a comment anchored on its issue page.
func CommentURL(baseURL, issueKey string, commentID int64) string {
	return IssueURL(baseURL, issueKey) + "#comment-" + strconv.FormatInt(commentID, 10)
}
