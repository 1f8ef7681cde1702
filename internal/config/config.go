// Package config holds the run configuration decoded from a JSON file.
// Validation reports severity-tagged issues rather than failing on the
// first problem, so one run surfaces everything that is wrong.
package config

import (
	"encoding/json"
	"fmt"
	"io"

	"radioetl/internal/source"
	"radioetl/internal/storage"
)

// Run modes.
const (
	ModeBulk      = "bulk"
	ModeStreaming = "streaming"
)

// Config describes one load run.
type Config struct {
	// Job names the run for metrics tagging. Defaults to "radioetl".
	Job string `json:"job,omitempty"`

	// Mode selects the pipeline: "bulk" or "streaming".
	Mode string `json:"mode"`

	Source  source.Config  `json:"source"`
	Storage storage.Config `json:"storage"`
}

// Load decodes a Config from JSON. Unknown fields are rejected so typos in
// config files fail loudly instead of silently using defaults.
func Load(r io.Reader) (Config, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var c Config
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return c, nil
}

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Severity string
	Path     string
	Message  string
}

// Validate checks a Config and returns all findings. A Config with no
// error-severity issues is runnable.
func Validate(c Config) []Issue {
	var issues []Issue

	errf := func(path, format string, a ...any) {
		issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, a...)})
	}
	warnf := func(path, format string, a ...any) {
		issues = append(issues, Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, a...)})
	}

	switch c.Mode {
	case ModeBulk, ModeStreaming:
	case "":
		errf("mode", "mode must be set (bulk or streaming)")
	default:
		errf("mode", "unknown mode %q (want bulk or streaming)", c.Mode)
	}

	switch c.Source.Kind {
	case "file":
		if c.Source.Path == "" {
			errf("source.path", "file source needs a path")
		}
	case "s3":
		if c.Source.Bucket == "" {
			errf("source.bucket", "s3 source needs a bucket")
		}
		if c.Source.Path == "" {
			errf("source.path", "s3 source needs an object key")
		}
		if c.Source.Endpoint == "" && c.Source.PathStyle {
			warnf("source.path_style", "path-style addressing is usually only needed with a custom endpoint")
		}
	case "":
		errf("source.kind", "source.kind must be set (file or s3)")
	default:
		errf("source.kind", "unknown source.kind %q (want file or s3)", c.Source.Kind)
	}

	switch c.Storage.Kind {
	case "postgres", "sqlite", "mssql":
		if c.Storage.DSN == "" {
			errf("storage.dsn", "storage.dsn must be set")
		}
	case "":
		errf("storage.kind", "storage.kind must be set (postgres, sqlite or mssql)")
	default:
		errf("storage.kind", "unknown storage.kind %q (want postgres, sqlite or mssql)", c.Storage.Kind)
	}

	if c.Job == "" {
		warnf("job", "job not set; metrics will report as job=radioetl")
	}

	return issues
}

// HasError reports whether any issue is error severity.
func HasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
