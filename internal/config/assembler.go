package config

import (
	"log/slog"

	"git.home.luguber.info/inful/kbsite/internal/metrics"
	"git.home.luguber.info/inful/kbsite/internal/revision"
	"git.home.luguber.info/inful/kbsite/internal/site"
	"git.home.luguber.info/inful/kbsite/internal/writer"
)

// SiteProfile returns the default profile with the file's overrides applied.
func (c *Config) SiteProfile() (site.Profile, error) {
	p := site.DefaultProfile().Apply(c.Profile)
	if err := p.Validate(); err != nil {
		return site.Profile{}, err
	}
	return p, nil
}

// RevisionReader builds the configured metadata backend.
func (c *Config) RevisionReader() revision.Reader {
	if c.Revision.Backend == revision.BackendGoGit {
		return revision.GoGit{Dir: c.Revision.Dir, Timeout: c.Revision.TimeoutDuration()}
	}
	return revision.GitCLI{
		Dir:      c.Revision.Dir,
		Timeout:  c.Revision.TimeoutDuration(),
		Parallel: c.Revision.Parallel,
	}
}

// OutputFormat returns the validated output format.
func (c *Config) OutputFormat() writer.Format {
	f, err := writer.ParseFormat(c.Output.Format)
	if err != nil {
		return writer.FormatJSON
	}
	return f
}

// NewAssembler wires a site.Assembler from the configuration.
func (c *Config) NewAssembler(rec metrics.Recorder, logger *slog.Logger) (*site.Assembler, error) {
	p, err := c.SiteProfile()
	if err != nil {
		return nil, err
	}
	return site.NewAssembler(
		site.WithProfile(p),
		site.WithRevisionReader(c.RevisionReader()),
		site.WithDocumentRoot(c.DocsDir),
		site.WithSidebarExcludes(c.Exclude...),
		site.WithRecorder(rec),
		site.WithLogger(logger),
	), nil
}
