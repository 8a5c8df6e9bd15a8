package cli

import (
	"os"
	"strings"

	envparse "github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// cliEnv defines root CLI defaults sourced from BACKLOG_NOTIFY_* env vars.
type cliEnv struct {
	// ConfigPath is the settings file path from BACKLOG_NOTIFY_CONFIG.
	ConfigPath string `env:"BACKLOG_NOTIFY_CONFIG"`
	// EnvFiles is a comma-separated .env file list from BACKLOG_NOTIFY_ENV_FILES.
	EnvFiles []string `env:"BACKLOG_NOTIFY_ENV_FILES" envSeparator:","`
	// LogLevel is the logging level from BACKLOG_NOTIFY_LOG_LEVEL.
	LogLevel string `env:"BACKLOG_NOTIFY_LOG_LEVEL"`
}

// applyEnvDefaults fills options that were not set by flags from BACKLOG_NOTIFY_* variables.
func applyEnvDefaults(cmd *cobra.Command, opts *Options) error {
	var e cliEnv
	if err := parseEnv(&e); err != nil {
		return err
	}
	if !cmd.Flag("config").Changed && envPresent("BACKLOG_NOTIFY_CONFIG") {
		opts.ConfigPath = strings.TrimSpace(e.ConfigPath)
		if err := cmd.Flag("config").Value.Set(opts.ConfigPath); err != nil {
			return err
		}
		cmd.Flag("config").Changed = true
	}
	if !cmd.Flag("env-file").Changed && envPresent("BACKLOG_NOTIFY_ENV_FILES") {
		opts.EnvFiles = e.EnvFiles
	}
	if !cmd.Flag("log-level").Changed && envPresent("BACKLOG_NOTIFY_LOG_LEVEL") {
		opts.LogLevel = e.LogLevel
		cmd.Flag("log-level").Changed = true
	}
	return nil
}

// parseEnv fills target from BACKLOG_NOTIFY_* env vars via caarlos0/env.
func parseEnv(target interface{}) error {
	return envparse.Parse(target)
}

// envPresent reports whether a non-empty env var exists.
func envPresent(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	return strings.TrimSpace(val) != ""
}
