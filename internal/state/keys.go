package state

import (
	"context"
	"fmt"
)

var (
	// AlreadySentIssues lists issue keys that were already delivered, in delivery order.
	AlreadySentIssues = NewJSONKey[[]string]("alreadySentIssues")
	// AlreadySentCommentIDs lists comment ids that were already delivered, in delivery order.
	AlreadySentCommentIDs = NewJSONKey[[]int64]("alreadySentCommentIds")
	// IssueLastUpdated is the greatest issue "updated" timestamp seen by the previous run.
	IssueLastUpdated = NewStringKey("issueLastUpdated")
)

// Snapshot is a read-only view of the sync progress keys.
type Snapshot struct {
	AlreadySentIssues     []string `yaml:"alreadySentIssues" json:"alreadySentIssues"`
	AlreadySentCommentIDs []int64  `yaml:"alreadySentCommentIds" json:"alreadySentCommentIds"`
	IssueLastUpdated      string   `yaml:"issueLastUpdated" json:"issueLastUpdated"`
}

// ReadSnapshot loads all sync progress keys. Absent keys yield empty values.
func ReadSnapshot(ctx context.Context, store Store) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.AlreadySentIssues, _, err = AlreadySentIssues.Get(ctx, store); err != nil {
		return Snapshot{}, fmt.Errorf("read sent issues: %w", err)
	}
	if snap.AlreadySentCommentIDs, _, err = AlreadySentCommentIDs.Get(ctx, store); err != nil {
		return Snapshot{}, fmt.Errorf("read sent comment ids: %w", err)
	}
	if snap.IssueLastUpdated, _, err = IssueLastUpdated.Get(ctx, store); err != nil {
		return Snapshot{}, fmt.Errorf("read last updated watermark: %w", err)
	}
	if snap.AlreadySentIssues == nil {
		snap.AlreadySentIssues = []string{}
	}
	if snap.AlreadySentCommentIDs == nil {
		snap.AlreadySentCommentIDs = []int64{}
	}
	return snap, nil
}
