package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/backlog-notify/internal/config"
	"github.com/codex-k8s/backlog-notify/internal/state"
)

const trackerIssues = `[
  {"id": 1, "issueKey": "PRJ-1", "summary": "first", "description": "body",
   "created": "2024-01-01T10:00:00Z", "updated": "2024-01-02T10:00:00Z", "createdUser": {"name": "alice"}},
  {"id": 2, "issueKey": "PRJ-2", "summary": "second", "description": null,
   "created": "2024-01-01T11:00:00Z", "updated": "2024-01-02T11:00:00Z", "createdUser": {"name": "bob"}}
]`

const trackerComments = `[
  {"id": 501, "content": "looks good", "created": "2024-01-02T10:30:00Z", "createdUser": {"name": "carol"}}
]`

type slackRecorder struct {
	mu    sync.Mutex
	texts []string
}

func (s *slackRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		s.mu.Lock()
		s.texts = append(s.texts, body.Text)
		s.mu.Unlock()
		_, _ = w.Write([]byte("ok"))
	}
}

func (s *slackRecorder) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

type fixture struct {
	configPath string
	statePath  string
	outputPath string
	slack      *slackRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tracker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v2/issues":
			_, _ = w.Write([]byte(trackerIssues))
		case "/api/v2/issues/PRJ-1/comments":
			_, _ = w.Write([]byte(trackerComments))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	t.Cleanup(tracker.Close)

	rec := &slackRecorder{}
	slack := httptest.NewServer(rec.handler(t))
	t.Cleanup(slack.Close)

	dir := t.TempDir()
	f := &fixture{
		configPath: filepath.Join(dir, "backlog-notify.yaml"),
		statePath:  filepath.Join(dir, "state.json"),
		outputPath: filepath.Join(dir, "outputs"),
		slack:      rec,
	}

	yamlBody := "backlogUrl: " + tracker.URL + "/\n" +
		"backlogProjectId: \"42\"\n" +
		"timezone: UTC\n" +
		"envFiles:\n  - secrets.env\n" +
		"state:\n  backend: file\n  path: " + f.statePath + "\n"
	require.NoError(t, os.WriteFile(f.configPath, []byte(yamlBody), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secrets.env"), []byte("BACKLOG_API_KEY=test-key\n"), 0o600))

	t.Setenv("SLACK_HOOK", slack.URL)
	t.Setenv("GITHUB_OUTPUT", f.outputPath)
	t.Setenv("BACKLOG_NOTIFY_CONFIG", "")
	t.Setenv("BACKLOG_NOTIFY_ENV_FILES", "")
	t.Setenv("BACKLOG_NOTIFY_LOG_LEVEL", "")
	t.Setenv("BACKLOG_URL", "")
	t.Setenv("BACKLOG_API_KEY", "")
	t.Setenv("BACKLOG_PROJECT_ID", "")
	t.Setenv("STATE_BACKEND", "")
	t.Setenv("STATE_PATH", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("TIMEZONE", "")
	return f
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(context.Background(), args, quietLogger(), &out)
	return out.String(), err
}

func TestSyncRunsOnceAndDeduplicates(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "--config", f.configPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "fetched=2 new=2 notified_issues=1 notified_comments=1")

	msgs := f.slack.messages()
	require.Len(t, msgs, 2)
	assert.True(t, strings.HasPrefix(msgs[0], ":open_mouth: alice\n:page_facing_up: first\n"))
	assert.Contains(t, msgs[0], "/view/PRJ-1\nbody")
	assert.Contains(t, msgs[1], "/view/PRJ-1#comment-501")
	assert.True(t, strings.HasSuffix(msgs[1], "--\nlooks good"))

	store, err := state.Open(state.BackendFile, f.statePath)
	require.NoError(t, err)
	snap, err := state.ReadSnapshot(context.Background(), store)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	assert.Equal(t, []string{"PRJ-1", "PRJ-2"}, snap.AlreadySentIssues)
	assert.Equal(t, []int64{501}, snap.AlreadySentCommentIDs)
	assert.Equal(t, "2024-01-02T11:00:00Z", snap.IssueLastUpdated)

	outputs, err := os.ReadFile(f.outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(outputs), "notified_issues=1\n")
	assert.Contains(t, string(outputs), "watermark=2024-01-02T11:00:00Z\n")

	// Nothing is new on the second pass.
	out, err = run(t, "run", "--config", f.configPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "notified_issues=0 notified_comments=0")
	assert.Len(t, f.slack.messages(), 2)
}

func TestStateShowAndResetWatermark(t *testing.T) {
	f := newFixture(t)
	_, err := run(t, "--config", f.configPath, "--log-level", "error")
	require.NoError(t, err)

	out, err := run(t, "state", "show", "--format", "json", "--config", f.configPath)
	require.NoError(t, err)
	var snap state.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "2024-01-02T11:00:00Z", snap.IssueLastUpdated)

	out, err = run(t, "state", "show", "--config", f.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "issueLastUpdated: \"2024-01-02T11:00:00Z\"")
	assert.Contains(t, out, "- PRJ-2")

	_, err = run(t, "state", "reset-watermark", "--config", f.configPath)
	require.NoError(t, err)

	out, err = run(t, "state", "show", "--format", "json", "--config", f.configPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Empty(t, snap.IssueLastUpdated)
	assert.Equal(t, []string{"PRJ-1", "PRJ-2"}, snap.AlreadySentIssues)

	_, err = run(t, "state", "show", "--format", "toml", "--config", f.configPath)
	require.Error(t, err)
}

func TestConfigFromEnvironmentVariable(t *testing.T) {
	f := newFixture(t)
	t.Setenv("BACKLOG_NOTIFY_CONFIG", f.configPath)
	t.Setenv("BACKLOG_NOTIFY_LOG_LEVEL", "error")

	out, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "notified_issues=1")
}

func TestMissingSettingsAreReported(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.configPath, []byte("timezone: UTC\nstate:\n  backend: memory\n"), 0o600))
	t.Setenv("SLACK_HOOK", "")

	_, err := run(t, "--config", f.configPath)
	require.Error(t, err)
	assert.True(t, config.IsValidationError(err))
	assert.Contains(t, err.Error(), "BACKLOG_URL")
	assert.Contains(t, err.Error(), "SLACK_HOOK")
	assert.Empty(t, f.slack.messages())
}

func TestExplicitConfigMustExist(t *testing.T) {
	newFixture(t)
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestRejectsArguments(t *testing.T) {
	f := newFixture(t)
	_, err := run(t, "--config", f.configPath, "extra")
	require.Error(t, err)
}
