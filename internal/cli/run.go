package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/backlog-notify/internal/backlog"
	"github.com/codex-k8s/backlog-notify/internal/ghoutput"
	"github.com/codex-k8s/backlog-notify/internal/notify"
	"github.com/codex-k8s/backlog-notify/internal/state"
	"github.com/codex-k8s/backlog-notify/internal/syncer"
)

// newRunCommand creates the "run" command, an explicit alias of the root action.
func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one synchronization pass (same as invoking without a command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// runSync wires the tracker client, Slack notifier and state store into a syncer.Engine
// and performs a single pass.
func runSync(ctx context.Context, out io.Writer) error {
	logger := LoggerFromContext(ctx)
	cfg := configFromContext(ctx)
	if cfg == nil {
		return fmt.Errorf("configuration is not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, err := state.Open(cfg.State.Backend, cfg.State.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("close state store failed", "err", cerr)
		}
	}()

	client, err := backlog.NewClient(logger, cfg.BacklogURL, cfg.BacklogAPIKey)
	if err != nil {
		return err
	}

	slack, err := notify.NewSlack(logger, cfg.SlackHook, notify.Formatter{
		BaseURL:  client.BaseURL(),
		Location: loc,
	}, nil)
	if err != nil {
		return err
	}

	engine, err := syncer.New(syncer.Params{
		Tracker:   client,
		Notifier:  slack,
		Store:     store,
		ProjectID: cfg.BacklogProjectID,
		Logger:    logger,
		Location:  loc,
	})
	if err != nil {
		return err
	}

	logger.Info("sync started",
		"project", cfg.BacklogProjectID,
		"state_backend", cfg.State.Backend,
		"state_path", cfg.State.Path,
	)
	report, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	if err := ghoutput.Write(ghoutput.PathFromEnv(), report.Outputs()); err != nil {
		logger.Warn("write step outputs failed", "err", err)
	}

	_, err = fmt.Fprintf(out, "run %s: fetched=%d new=%d notified_issues=%d notified_comments=%d watermark=%q\n",
		report.RunID, report.Fetched, len(report.NewIssues), report.NotifiedIssues, report.NotifiedComments, report.Watermark)
	return err
}
