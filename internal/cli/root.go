// Package cli defines the command-line interface for backlog-notify.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/backlog-notify/internal/config"
	"github.com/codex-k8s/backlog-notify/internal/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	EnvFiles   []string
	LogLevel   string

	closers []io.Closer
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
// Without arguments a single sync run is performed.
func Execute(args []string, logger *slog.Logger) error {
	return execute(context.Background(), args, logger, os.Stdout)
}

func execute(ctx context.Context, args []string, logger *slog.Logger, out io.Writer) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	opts := &Options{
		ConfigPath: config.DefaultPath,
		LogLevel:   logging.LevelInfo.String(),
	}
	defer opts.close()

	rootCmd := newRootCommand(opts)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)

	return rootCmd.ExecuteContext(context.WithValue(ctx, loggerKey{}, logger))
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backlog-notify",
		Short: "backlog-notify forwards new Backlog issues and comments to Slack",
		Long: "backlog-notify polls a Backlog project for issues and comments updated since yesterday, " +
			"posts the ones it has not seen before to a Slack webhook and records them so each is sent at most once. " +
			"It is meant to be run on a schedule.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyEnvDefaults(cmd, opts); err != nil {
				return err
			}

			cfg, err := config.Load(config.LoadOptions{
				Path:     opts.ConfigPath,
				Required: cmd.Flag("config").Changed,
				EnvFiles: opts.EnvFiles,
			})
			if err != nil {
				return err
			}

			levelText := cfg.LogLevel
			if cmd.Flag("log-level").Changed {
				levelText = opts.LogLevel
			}
			level := logging.ParseLevel(levelText)
			logger, closer := logging.Setup(level, cfg.LogFile)
			opts.closers = append(opts.closers, closer)

			ctx := context.WithValue(cmd.Context(), loggerKey{}, logger)
			ctx = context.WithValue(ctx, configKey{}, cfg)
			cmd.SetContext(ctx)
			logger.Debug("logger initialized", "level", level.String(), "config", opts.ConfigPath)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "Path to the optional YAML settings file")
	cmd.PersistentFlags().StringArrayVar(&opts.EnvFiles, "env-file", nil, "Additional .env file to load (repeatable)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newRunCommand(),
		newStateCommand(),
	)

	return cmd
}

func (o *Options) close() {
	for _, c := range o.closers {
		_ = c.Close()
	}
	o.closers = nil
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// configKey is a private context key used to store the loaded configuration.
type configKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}

// configFromContext returns the configuration loaded by the root pre-run hook.
func configFromContext(ctx context.Context) *config.Config {
	if ctx == nil {
		return nil
	}
	cfg, _ := ctx.Value(configKey{}).(*config.Config)
	return cfg
}
