package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/kbsite/internal/config"
	"git.home.luguber.info/inful/kbsite/internal/logfields"
	"git.home.luguber.info/inful/kbsite/internal/metrics"
)

// Global carries state shared by all subcommands.
type Global struct {
	Logger   *slog.Logger
	Recorder *metrics.PrometheusRecorder
	Stdout   io.Writer
}

// NewGlobal returns the process-wide state with a fresh metrics registry.
func NewGlobal() *Global {
	return &Global{
		Logger:   slog.Default(),
		Recorder: metrics.NewPrometheusRecorder(nil),
		Stdout:   os.Stdout,
	}
}

// CLI definition & global flags.
type CLI struct {
	Config          string           `short:"c" help:"Configuration file path (default: ${config_file} if present)" type:"path"`
	Verbose         bool             `short:"v" help:"Enable verbose logging"`
	Version         kong.VersionFlag `name:"version" help:"Show version and exit"`
	MetricsTextfile string           `name:"metrics-textfile" help:"Write Prometheus metrics to this file after the run" type:"path"`

	Build    BuildCmd    `cmd:"" name:"config" default:"withargs" help:"Build the site configuration and write it out"`
	Revision RevisionCmd `cmd:"" help:"Print the revision metadata used for the footer"`
	Sidebar  SidebarCmd  `cmd:"" help:"Print the generated sidebar tree"`
	Watch    WatchCmd    `cmd:"" help:"Rebuild the site configuration whenever docs or HEAD change"`
}

// AfterApply runs after flag parsing; setup logging once. Levels from the
// configuration file are applied later by load.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(NewLogger(os.Stderr, level, config.LogFormatText))
	return nil
}

// NewLogger builds the process logger on w.
func NewLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// load reads the runtime configuration and reconfigures logging from it.
// An explicit --config must exist; the default file is optional.
func (c *CLI) load(g *Global) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if c.Config != "" {
		cfg, err = config.Load(c.Config)
	} else {
		cfg, err = config.LoadOptional(config.DefaultFile)
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level.Slog()
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = NewLogger(os.Stderr, level, cfg.Logging.Format)
	slog.SetDefault(g.Logger)
	if cfg.Path() != "" {
		g.Logger.Debug("Loaded configuration", logfields.Path(cfg.Path()))
	}
	return cfg, nil
}

// metricsTextfile resolves the flag against the configuration file.
func (c *CLI) metricsTextfile(cfg *config.Config) string {
	if c.MetricsTextfile != "" {
		return c.MetricsTextfile
	}
	return cfg.Metrics.Textfile
}

// flushMetrics writes the registry when a textfile path is configured.
// Failures are logged; metrics never fail a run.
func (c *CLI) flushMetrics(g *Global, cfg *config.Config) {
	path := c.metricsTextfile(cfg)
	if path == "" || g.Recorder == nil {
		return
	}
	if err := metrics.WriteTextfile(path, g.Recorder.Registry()); err != nil {
		g.Logger.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
		return
	}
	g.Logger.Debug("Wrote metrics textfile", logfields.Path(path))
}

func recorder(g *Global) metrics.Recorder {
	if g.Recorder == nil {
		return metrics.NoopRecorder{}
	}
	return g.Recorder
}
