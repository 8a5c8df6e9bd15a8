package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/codex-k8s/backlog-notify/internal/config"
	"github.com/codex-k8s/backlog-notify/internal/state"
)

// newStateCommand creates the "state" group for inspecting persisted sync progress.
func newStateCommand() *cobra.Command {
	return newGroupCommand(
		"state",
		"Inspect or adjust persisted sync progress",
		newStateShowCommand(),
		newStateResetWatermarkCommand(),
	)
}

// newStateShowCommand prints the sent issue keys, sent comment ids and the watermark.
func newStateShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStateStore(configFromContext(ctx))
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snap, err := state.ReadSnapshot(ctx, store)
			if err != nil {
				return err
			}

			var out []byte
			switch strings.ToLower(strings.TrimSpace(format)) {
			case "", "yaml":
				out, err = yaml.Marshal(snap)
			case "json":
				out, err = json.MarshalIndent(snap, "", "  ")
				out = append(out, '\n')
			default:
				return fmt.Errorf("unsupported format %q (use yaml or json)", format)
			}
			if err != nil {
				return fmt.Errorf("encode state: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml or json")
	return cmd
}

// newStateResetWatermarkCommand clears the watermark so the next run checks comments of every fetched issue.
func newStateResetWatermarkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-watermark",
		Short: "Clear the last-updated watermark so the next run rechecks all comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := LoggerFromContext(ctx)

			store, err := openStateStore(configFromContext(ctx))
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			previous, _, err := state.IssueLastUpdated.Get(ctx, store)
			if err != nil {
				return err
			}
			if err := state.IssueLastUpdated.Put(ctx, store, ""); err != nil {
				return fmt.Errorf("reset watermark: %w", err)
			}
			logger.Info("watermark reset", "previous", previous)
			return nil
		},
	}
}

func openStateStore(cfg *config.Config) (state.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is not loaded")
	}
	return state.Open(cfg.State.Backend, cfg.State.Path)
}
