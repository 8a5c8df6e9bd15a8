// Package config contains the loader and strongly typed model for backlog-notify settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	envparse "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/codex-k8s/backlog-notify/internal/env"
	"github.com/codex-k8s/backlog-notify/internal/state"
)

const (
	// DefaultPath is the default location of the optional YAML settings file.
	DefaultPath = "backlog-notify.yaml"
	// DefaultTimezone is used for message timestamps and the "updated since" date.
	DefaultTimezone = "Asia/Tokyo"
	// DefaultStatePath is the default state file or database path.
	DefaultStatePath = "backlog-notify.db"
)

// Config is the full set of recognized options.
type Config struct {
	// BacklogURL is the base URL of the tracker instance.
	BacklogURL string `yaml:"backlogUrl,omitempty" env:"BACKLOG_URL"`
	// BacklogAPIKey is appended to every tracker request as the apiKey query parameter.
	BacklogAPIKey string `yaml:"backlogApiKey,omitempty" env:"BACKLOG_API_KEY"`
	// BacklogProjectID is the project whose issues are synchronized.
	BacklogProjectID string `yaml:"backlogProjectId,omitempty" env:"BACKLOG_PROJECT_ID"`
	// SlackHook is the destination webhook URL.
	SlackHook string `yaml:"slackHook,omitempty" env:"SLACK_HOOK"`
	// Timezone is an IANA zone name used for message timestamps and the since-yesterday filter.
	Timezone string `yaml:"timezone,omitempty" env:"TIMEZONE"`
	// LogLevel is the default log level (debug, info, warn, error).
	LogLevel string `yaml:"logLevel,omitempty" env:"LOG_LEVEL"`
	// LogFile enables a rotated log file in addition to stderr.
	LogFile string `yaml:"logFile,omitempty" env:"LOG_FILE"`
	// EnvFiles lists .env files to load before reading the environment.
	EnvFiles []string `yaml:"envFiles,omitempty"`
	// State selects where sync progress is persisted.
	State StateConfig `yaml:"state,omitempty" envPrefix:"STATE_"`
}

// StateConfig describes the persistent state backend.
type StateConfig struct {
	// Backend is one of sqlite, file or memory.
	Backend string `yaml:"backend,omitempty" env:"BACKEND"`
	// Path is the database or JSON file path for persistent backends.
	Path string `yaml:"path,omitempty" env:"PATH"`
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// Path is the YAML settings file. A missing file is not an error unless Required is set.
	Path string
	// Required makes a missing settings file an error.
	Required bool
	// EnvFiles are extra .env files, loaded after those listed in the YAML file.
	EnvFiles []string
	// Environ replaces the process environment when non-nil.
	Environ env.Vars
}

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "invalid configuration"
	}
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// IsValidationError reports whether err is a configuration validation failure.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// Load reads the YAML file, then .env files, then the environment, later sources
// overriding earlier ones. Defaults are applied but credentials are not checked;
// callers that talk to the tracker call Validate.
func Load(opts LoadOptions) (*Config, error) {
	cfg := &Config{}
	baseDir := "."

	if path := strings.TrimSpace(opts.Path); path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		baseDir = filepath.Dir(absPath)

		raw, err := os.ReadFile(absPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config %q: %w", absPath, err)
			}
		case errors.Is(err, os.ErrNotExist) && !opts.Required:
		default:
			return nil, fmt.Errorf("read config %q: %w", absPath, err)
		}
	}

	files := append(append([]string{}, cfg.EnvFiles...), opts.EnvFiles...)
	fileVars, err := env.LoadEnvFiles(baseDir, files)
	if err != nil {
		return nil, err
	}

	environ := opts.Environ
	if environ == nil {
		environ = env.FromOS()
	}

	if err := envparse.ParseWithOptions(cfg, envparse.Options{
		Environment: env.Merge(fileVars, environ),
	}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.normalize()
	cfg.applyDefaults()
	if err := cfg.validateState(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks everything a sync run needs before any request is made.
func (c *Config) Validate() error {
	var problems []string
	required := []struct {
		value string
		name  string
	}{
		{c.BacklogURL, "BACKLOG_URL (backlogUrl)"},
		{c.BacklogAPIKey, "BACKLOG_API_KEY (backlogApiKey)"},
		{c.BacklogProjectID, "BACKLOG_PROJECT_ID (backlogProjectId)"},
		{c.SlackHook, "SLACK_HOOK (slackHook)"},
	}
	for _, r := range required {
		if r.value == "" {
			problems = append(problems, r.name+" is required")
		}
	}
	if c.BacklogURL != "" && !hasHTTPScheme(c.BacklogURL) {
		problems = append(problems, fmt.Sprintf("backlogUrl %q must start with http:// or https://", c.BacklogURL))
	}
	if c.SlackHook != "" && !hasHTTPScheme(c.SlackHook) {
		problems = append(problems, "slackHook must start with http:// or https://")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("timezone %q: %v", c.Timezone, err))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) normalize() {
	c.BacklogURL = strings.TrimRight(strings.TrimSpace(c.BacklogURL), "/")
	c.BacklogAPIKey = strings.TrimSpace(c.BacklogAPIKey)
	c.BacklogProjectID = strings.TrimSpace(c.BacklogProjectID)
	c.SlackHook = strings.TrimSpace(c.SlackHook)
	c.Timezone = strings.TrimSpace(c.Timezone)
	c.LogFile = strings.TrimSpace(c.LogFile)
	c.State.Backend = strings.ToLower(strings.TrimSpace(c.State.Backend))
	c.State.Path = strings.TrimSpace(c.State.Path)
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.State.Backend == "" {
		c.State.Backend = state.BackendSQLite
	}
	if c.State.Path == "" && c.State.Backend != state.BackendMemory {
		c.State.Path = DefaultStatePath
	}
}

func (c *Config) validateState() error {
	switch c.State.Backend {
	case state.BackendSQLite, state.BackendFile, state.BackendMemory:
		return nil
	default:
		return &ValidationError{Problems: []string{
			fmt.Sprintf("state backend %q is not supported (use sqlite, file or memory)", c.State.Backend),
		}}
	}
}

func hasHTTPScheme(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
