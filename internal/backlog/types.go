package backlog

import (
	"encoding/json"
	"fmt"
)

// Issue is a tracker issue as returned by the issue list endpoint.
type Issue struct {
	// ID is the tracker's numeric issue id.
	ID int64
	// Key is the project-prefixed human key (e.g. PRJ-12).
	Key string
	// Summary is the issue title.
	Summary string
	// Description is the issue body; nil when the tracker returns null.
	Description *string
	// Created is the ISO-8601 creation timestamp as sent by the tracker.
	Created string
	// Updated is the ISO-8601 update timestamp; it compares lexicographically.
	Updated string
	// CreatedUser is the display name of the issue creator.
	CreatedUser string
}

// Comment is a tracker comment on one issue.
type Comment struct {
	// ID is unique across the tracker and is used directly for deduplication.
	ID int64
	// Content is the comment body; empty when the tracker returns null.
	Content string
	// Created is the ISO-8601 creation timestamp.
	Created string
	// Updated is the ISO-8601 update timestamp, when present.
	Updated string
	// CreatedUser is the display name of the comment author.
	CreatedUser string
}

type userResponse struct {
	Name *string `json:"name"`
}

type issueResponse struct {
	ID          *int64          `json:"id"`
	IssueKey    *string         `json:"issueKey"`
	Summary     *string         `json:"summary"`
	Description json.RawMessage `json:"description"`
	Created     *string         `json:"created"`
	Updated     *string         `json:"updated"`
	CreatedUser *userResponse   `json:"createdUser"`
}

type commentResponse struct {
	ID          *int64        `json:"id"`
	Content     *string       `json:"content"`
	Created     *string       `json:"created"`
	Updated     *string       `json:"updated"`
	CreatedUser *userResponse `json:"createdUser"`
}

func (r issueResponse) toIssue() (Issue, error) {
	switch {
	case r.ID == nil:
		return Issue{}, missingField("id")
	case r.IssueKey == nil || *r.IssueKey == "":
		return Issue{}, missingField("issueKey")
	case r.Summary == nil:
		return Issue{}, missingField("summary")
	case len(r.Description) == 0:
		return Issue{}, missingField("description")
	case r.Created == nil:
		return Issue{}, missingField("created")
	case r.Updated == nil:
		return Issue{}, missingField("updated")
	case r.CreatedUser == nil || r.CreatedUser.Name == nil:
		return Issue{}, missingField("createdUser.name")
	}

	var description *string
	if string(r.Description) != "null" {
		var text string
		if err := json.Unmarshal(r.Description, &text); err != nil {
			return Issue{}, &fieldError{field: "description", err: err}
		}
		description = &text
	}

	return Issue{
		ID:          *r.ID,
		Key:         *r.IssueKey,
		Summary:     *r.Summary,
		Description: description,
		Created:     *r.Created,
		Updated:     *r.Updated,
		CreatedUser: *r.CreatedUser.Name,
	}, nil
}

func (r commentResponse) toComment() (Comment, error) {
	switch {
	case r.ID == nil:
		return Comment{}, missingField("id")
	case r.Created == nil:
		return Comment{}, missingField("created")
	case r.CreatedUser == nil || r.CreatedUser.Name == nil:
		return Comment{}, missingField("createdUser.name")
	}

	c := Comment{
		ID:          *r.ID,
		Created:     *r.Created,
		CreatedUser: *r.CreatedUser.Name,
	}
	if r.Content != nil {
		c.Content = *r.Content
	}
	if r.Updated != nil {
		c.Updated = *r.Updated
	}
	return c, nil
}

type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("missing required field %q", e.field)
	}
	return fmt.Sprintf("field %q: %v", e.field, e.err)
}

func (e *fieldError) Unwrap() error { return e.err }

func missingField(name string) error {
	return &fieldError{field: name}
}
