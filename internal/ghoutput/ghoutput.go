// Package ghoutput publishes run results as GitHub Actions step outputs, for
// deployments that trigger the job from a scheduled workflow.
package ghoutput

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// EnvVar names the file GitHub Actions reads step outputs from.
const EnvVar = "GITHUB_OUTPUT"

// PathFromEnv returns the outputs file path, or "" outside GitHub Actions.
func PathFromEnv() string {
	return strings.TrimSpace(os.Getenv(EnvVar))
}

// Write appends values to the outputs file at path in key=value form, sorted by
// key. An empty path or empty map is a no-op.
func Write(path string, values map[string]string) error {
	if path == "" || len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.TrimSpace(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s\n", key, escape(values[key]))
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open step outputs %q: %w", path, err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write step outputs: %w", err)
	}
	return f.Close()
}

// escape keeps a value on one line using the workflow-command encoding.
func escape(value string) string {
	value = strings.ReplaceAll(value, "%", "%25")
	value = strings.ReplaceAll(value, "\r", "%0D")
	return strings.ReplaceAll(value, "\n", "%0A")
}
