package site

import (
	"context"
	"log/slog"
	"slices"
	"time"

	kberrors "git.home.luguber.info/inful/kbsite/internal/errors"
	"git.home.luguber.info/inful/kbsite/internal/logfields"
	"git.home.luguber.info/inful/kbsite/internal/metrics"
	"git.home.luguber.info/inful/kbsite/internal/revision"
	"git.home.luguber.info/inful/kbsite/internal/sidebar"
)

// Assembler builds Config values from a profile, a revision reader and a
// sidebar generator.
type Assembler struct {
	profile  Profile
	reader   revision.Reader
	sidebars sidebar.Generator
	docRoot  string
	excludes []string
	recorder metrics.Recorder
	logger   *slog.Logger
	custom   *Profile
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithProfile replaces the default profile. A profile that fails Validate is
// logged and ignored.
func WithProfile(p Profile) Option {
	return func(a *Assembler) {
		c := p.clone()
		a.custom = &c
	}
}

func WithRevisionReader(r revision.Reader) Option {
	return func(a *Assembler) {
		if r != nil {
			a.reader = r
		}
	}
}

func WithSidebarGenerator(g sidebar.Generator) Option {
	return func(a *Assembler) {
		if g != nil {
			a.sidebars = g
		}
	}
}

// WithDocumentRoot moves the sidebar root away from the working directory.
func WithDocumentRoot(dir string) Option {
	return func(a *Assembler) {
		if dir != "" {
			a.docRoot = dir
		}
	}
}

// WithSidebarExcludes adds glob patterns the sidebar skips.
func WithSidebarExcludes(patterns ...string) Option {
	return func(a *Assembler) { a.excludes = append(a.excludes, patterns...) }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(a *Assembler) {
		if r != nil {
			a.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAssembler returns an Assembler reading git metadata and the sidebar
// from the working directory with the default profile.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		profile:  DefaultProfile(),
		reader:   revision.GitCLI{},
		sidebars: sidebar.DiskGenerator{},
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.custom != nil {
		if err := a.custom.Validate(); err != nil {
			a.logger.Warn("Ignoring invalid site profile, using defaults", logfields.Error(err))
		} else {
			a.profile = *a.custom
		}
		a.custom = nil
	}
	return a
}

// BuildConfiguration builds the configuration for the working directory with
// all defaults.
func BuildConfiguration(ctx context.Context) Config {
	return NewAssembler().Build(ctx)
}

// SidebarOptions returns the options record Build passes to the generator.
// Collapse behaviour is fixed; only the root and excludes vary.
func (a *Assembler) SidebarOptions() sidebar.Options {
	opts := sidebar.DefaultOptions()
	if a.docRoot != "" {
		opts.DocumentRootPath = a.docRoot
	}
	if len(a.excludes) > 0 {
		opts.ExcludePatterns = slices.Clone(a.excludes)
	}
	return opts
}

// Build reads revision metadata and assembles the configuration. It has no
// failure path: unreadable metadata degrades the footer to sentinels and a
// failed sidebar walk yields an empty sidebar.
func (a *Assembler) Build(ctx context.Context) Config {
	start := time.Now()

	res := revision.NewResolver(a.reader,
		revision.WithRecorder(a.recorder),
		revision.WithLogger(a.logger),
	).Resolve(ctx)

	opts := a.SidebarOptions()
	items, err := a.sidebars.Generate(opts.Clone())
	sidebarFailed := err != nil
	if sidebarFailed {
		a.logger.Warn("Sidebar generation failed, emitting empty sidebar",
			logfields.Path(opts.DocumentRootPath),
			logfields.Error(kberrors.SidebarFailed(opts.DocumentRootPath, err)))
		items = []sidebar.Item{}
	}

	p := a.profile.clone()
	cfg := Config{
		Title:       p.Title,
		Description: p.Description,
		Base:        p.Base,
		ThemeConfig: ThemeConfig{
			Nav:         p.Nav,
			Sidebar:     cloneItems(items),
			Search:      Search{Provider: SearchProviderLocal},
			Footer:      Footer{Message: FooterMessage(res.Metadata)},
			SocialLinks: p.SocialLinks,
		},
		SidebarOptions: opts,
		Revision:       res.Metadata,
	}

	outcome := metrics.OutcomeOK
	if res.Degraded || sidebarFailed {
		outcome = metrics.OutcomeDegraded
	}
	elapsed := time.Since(start)
	a.recorder.ObserveBuildDuration(elapsed)
	a.recorder.IncBuildOutcome(outcome)
	a.recorder.SetSidebarItems(sidebar.Count(items))

	a.logger.Info("Site configuration assembled",
		logfields.Hash(res.Hash),
		logfields.Date(res.Date),
		logfields.Degraded(res.Degraded),
		logfields.Items(sidebar.Count(items)),
		logfields.Duration(elapsed))
	return cfg
}
