package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	kberrors "git.home.luguber.info/inful/kbsite/internal/errors"
	"git.home.luguber.info/inful/kbsite/internal/revision"
	"git.home.luguber.info/inful/kbsite/internal/writer"
)

const (
	DefaultDocsDir  = "."
	DefaultDebounce = 500 * time.Millisecond
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Slog maps the level onto log/slog, defaulting to info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

func applyDefaults(c *Config) {
	if c.DocsDir == "" {
		c.DocsDir = DefaultDocsDir
	}

	c.Revision.Backend = strings.ToLower(strings.TrimSpace(c.Revision.Backend))
	if c.Revision.Backend == "" {
		c.Revision.Backend = revision.BackendGit
	}
	if c.Revision.Timeout == "" {
		c.Revision.Timeout = revision.DefaultTimeout.String()
	}
	if c.Revision.Dir == "" {
		c.Revision.Dir = c.DocsDir
	}

	if c.Output.Path == "" {
		c.Output.Path = writer.Stdout
	}
	if c.Output.Format == "" {
		c.Output.Format = string(writer.FormatFromPath(c.Output.Path))
	}

	c.Logging.Level = LogLevel(strings.ToLower(string(c.Logging.Level)))
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	c.Logging.Format = LogFormat(strings.ToLower(string(c.Logging.Format)))
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}

	if c.Watch.Debounce == "" {
		c.Watch.Debounce = DefaultDebounce.String()
	}
}

// Validate checks enumerations, durations and the profile overrides.
func (c *Config) Validate() error {
	switch c.Revision.Backend {
	case revision.BackendGit, revision.BackendGoGit:
	default:
		return kberrors.ValidationFailed("revision.backend",
			fmt.Sprintf("unknown backend %q (want %s or %s)", c.Revision.Backend, revision.BackendGit, revision.BackendGoGit))
	}
	if d, err := time.ParseDuration(c.Revision.Timeout); err != nil || d <= 0 {
		return kberrors.ValidationFailed("revision.timeout", fmt.Sprintf("invalid duration %q", c.Revision.Timeout))
	}
	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d <= 0 {
		return kberrors.ValidationFailed("watch.debounce", fmt.Sprintf("invalid duration %q", c.Watch.Debounce))
	}
	if _, err := writer.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	switch c.Logging.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return kberrors.ValidationFailed("logging.level", fmt.Sprintf("unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return kberrors.ValidationFailed("logging.format", fmt.Sprintf("unknown format %q", c.Logging.Format))
	}
	_, err := c.SiteProfile()
	return err
}
