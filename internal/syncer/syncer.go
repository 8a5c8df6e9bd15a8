// Package syncer runs one incremental synchronization pass: it fetches recently
// updated issues, notifies new issues and comments exactly once, and records
// progress in the state store.
//
// A run is strictly sequential. State is written after the issue batch, after
// each touched issue's comment batch, and finally for the watermark, so progress
// made before a failure survives it.
package syncer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/codex-k8s/backlog-notify/internal/backlog"
	"github.com/codex-k8s/backlog-notify/internal/state"
)

// Params holds the dependencies of an Engine.
type Params struct {
	Tracker   Tracker
	Notifier  Notifier
	Store     state.Store
	ProjectID string
	Logger    *slog.Logger
	// Location is the zone in which "yesterday" is computed; UTC when nil.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
	// NewRunID defaults to a random UUID.
	NewRunID func() string
}

// Engine performs sync runs against one project.
type Engine struct {
	tracker   Tracker
	notifier  Notifier
	store     state.Store
	projectID string
	logger    *slog.Logger
	location  *time.Location
	now       func() time.Time
	newRunID  func() string
}

// Report summarizes one run.
type Report struct {
	RunID string
	// Since is the updatedSince date sent to the tracker.
	Since string
	// Fetched is the number of candidate issues returned by the tracker.
	Fetched int
	// NewIssues lists keys not seen before, whether or not they were notified.
	NewIssues []string
	// NotifiedIssues counts issue messages delivered.
	NotifiedIssues int
	// SkippedIssues lists new keys not notified because their description is null.
	SkippedIssues []string
	// TouchedIssues lists keys whose comments were checked.
	TouchedIssues []string
	// NotifiedComments counts comment messages delivered.
	NotifiedComments int
	// Watermark is the value persisted at the end of the run.
	Watermark string
}

// Outputs flattens the report into string values for CI step outputs.
func (r Report) Outputs() map[string]string {
	return map[string]string{
		"run_id":            r.RunID,
		"fetched":           strconv.Itoa(r.Fetched),
		"new_issues":        strconv.Itoa(len(r.NewIssues)),
		"notified_issues":   strconv.Itoa(r.NotifiedIssues),
		"notified_comments": strconv.Itoa(r.NotifiedComments),
		"watermark":         r.Watermark,
	}
}

// New validates p and returns an Engine.
func New(p Params) (*Engine, error) {
	if p.Tracker == nil {
		return nil, fmt.Errorf("syncer requires a tracker")
	}
	if p.Notifier == nil {
		return nil, fmt.Errorf("syncer requires a notifier")
	}
	if p.Store == nil {
		return nil, fmt.Errorf("syncer requires a state store")
	}
	if p.ProjectID == "" {
		return nil, fmt.Errorf("syncer requires a project id")
	}

	e := &Engine{
		tracker:   p.Tracker,
		notifier:  p.Notifier,
		store:     p.Store,
		projectID: p.ProjectID,
		logger:    p.Logger,
		location:  p.Location,
		now:       p.Now,
		newRunID:  p.NewRunID,
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.location == nil {
		e.location = time.UTC
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newRunID == nil {
		e.newRunID = func() string { return uuid.NewString() }
	}
	return e, nil
}

// Yesterday returns the calendar date one day before now in loc, as yyyy-mm-dd.
func Yesterday(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).AddDate(0, 0, -1).Format(time.DateOnly)
}

// Run performs one synchronization pass. Any tracker, notifier or store error
// aborts the run; state persisted before the failure is kept.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: e.newRunID()}
	logger := e.logger.With("run", report.RunID, "project", e.projectID)

	sentIssues, _, err := state.AlreadySentIssues.Get(ctx, e.store)
	if err != nil {
		return report, fmt.Errorf("load sent issues: %w", err)
	}
	sentComments, _, err := state.AlreadySentCommentIDs.Get(ctx, e.store)
	if err != nil {
		return report, fmt.Errorf("load sent comments: %w", err)
	}
	watermark, _, err := state.IssueLastUpdated.Get(ctx, e.store)
	if err != nil {
		return report, fmt.Errorf("load watermark: %w", err)
	}

	report.Since = Yesterday(e.now(), e.location)
	issues, err := e.tracker.ListIssues(ctx, report.Since, e.projectID)
	if err != nil {
		return report, fmt.Errorf("list issues: %w", err)
	}
	report.Fetched = len(issues)
	logger.Info("fetched issues", "since", report.Since, "keys", issueKeys(issues))

	if err := e.syncIssues(ctx, logger, issues, sentIssues, &report); err != nil {
		return report, err
	}
	if err := e.syncComments(ctx, logger, issues, watermark, sentComments, &report); err != nil {
		return report, err
	}

	report.Watermark = maxUpdated(issues)
	if err := state.IssueLastUpdated.Put(ctx, e.store, report.Watermark); err != nil {
		return report, fmt.Errorf("save watermark: %w", err)
	}

	logger.Info("sync finished",
		"fetched", report.Fetched,
		"new_issues", len(report.NewIssues),
		"notified_issues", report.NotifiedIssues,
		"notified_comments", report.NotifiedComments,
		"watermark", report.Watermark,
	)
	return report, nil
}

// syncIssues notifies issues whose key has never been recorded. A new issue
// with a null description is not notified but its key is still recorded, so
// it will not be reconsidered if the description is filled in later.
func (e *Engine) syncIssues(ctx context.Context, logger *slog.Logger, issues []backlog.Issue, sent []string, report *Report) error {
	known := make(map[string]struct{}, len(sent))
	for _, key := range sent {
		known[key] = struct{}{}
	}

	var newIssues []backlog.Issue
	for _, issue := range issues {
		if _, ok := known[issue.Key]; ok {
			continue
		}
		newIssues = append(newIssues, issue)
	}

	for _, issue := range newIssues {
		report.NewIssues = append(report.NewIssues, issue.Key)
		if issue.Description == nil {
			report.SkippedIssues = append(report.SkippedIssues, issue.Key)
			logger.Debug("skipping issue without description", "issue", issue.Key)
			continue
		}
		if err := e.notifier.NotifyIssue(ctx, issue); err != nil {
			return err
		}
		report.NotifiedIssues++
	}
	logger.Info("new issues", "keys", report.NewIssues, "skipped", report.SkippedIssues)

	updated := append(append(make([]string, 0, len(sent)+len(report.NewIssues)), sent...), report.NewIssues...)
	if err := state.AlreadySentIssues.Put(ctx, e.store, updated); err != nil {
		return fmt.Errorf("save sent issues: %w", err)
	}
	return nil
}

// syncComments checks comments of every issue updated strictly after the
// watermark read at the start of the run. Comment ids are persisted once per
// issue by re-reading the stored list and appending to it.
func (e *Engine) syncComments(ctx context.Context, logger *slog.Logger, issues []backlog.Issue, watermark string, sent []int64, report *Report) error {
	known := make(map[int64]struct{}, len(sent))
	for _, id := range sent {
		known[id] = struct{}{}
	}

	for _, issue := range issues {
		touched := issue.Updated > watermark
		logger.Debug("issue updated", "issue", issue.Key, "updated", issue.Updated, "watermark", watermark, "touched", touched)
		if !touched {
			continue
		}
		report.TouchedIssues = append(report.TouchedIssues, issue.Key)

		comments, err := e.tracker.ListComments(ctx, issue.Key)
		if err != nil {
			return fmt.Errorf("list comments of %s: %w", issue.Key, err)
		}

		var newIDs []int64
		for _, comment := range comments {
			if _, ok := known[comment.ID]; ok {
				continue
			}
			if err := e.notifier.NotifyComment(ctx, comment, issue); err != nil {
				return err
			}
			known[comment.ID] = struct{}{}
			newIDs = append(newIDs, comment.ID)
			report.NotifiedComments++
		}
		if len(newIDs) > 0 {
			logger.Info("new comments", "issue", issue.Key, "ids", newIDs)
		}

		stored, _, err := state.AlreadySentCommentIDs.Get(ctx, e.store)
		if err != nil {
			return fmt.Errorf("reload sent comments: %w", err)
		}
		ids := append(append(make([]int64, 0, len(stored)+len(newIDs)), stored...), newIDs...)
		if err := state.AlreadySentCommentIDs.Put(ctx, e.store, ids); err != nil {
			return fmt.Errorf("save sent comments of %s: %w", issue.Key, err)
		}
	}
	return nil
}

// maxUpdated returns the lexicographically greatest Updated value, or "" for no issues.
func maxUpdated(issues []backlog.Issue) string {
	var out string
	for _, issue := range issues {
		if issue.Updated > out {
			out = issue.Updated
		}
	}
	return out
}

func issueKeys(issues []backlog.Issue) []string {
	keys := make([]string, 0, len(issues))
	for _, issue := range issues {
		keys = append(keys, issue.Key)
	}
	return keys
}
