package sidebar

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Options controls sidebar generation. Field names follow the keys the site
// framework's sidebar plugin uses so the record can be emitted verbatim.
type Options struct {
	DocumentRootPath        string   `json:"documentRootPath" yaml:"documentRootPath" toml:"documentRootPath"`
	UseTitleFromFileHeading bool     `json:"useTitleFromFileHeading" yaml:"useTitleFromFileHeading" toml:"useTitleFromFileHeading"`
	HyphenToSpace           bool     `json:"hyphenToSpace" yaml:"hyphenToSpace" toml:"hyphenToSpace"`
	UnderscoreToSpace       bool     `json:"underscoreToSpace" yaml:"underscoreToSpace" toml:"underscoreToSpace"`
	Collapsed               bool     `json:"collapsed" yaml:"collapsed" toml:"collapsed"`
	CollapseDepth           int      `json:"collapseDepth" yaml:"collapseDepth" toml:"collapseDepth"`
	ExcludePatterns         []string `json:"excludePattern,omitempty" yaml:"excludePattern,omitempty" toml:"excludePattern,omitempty"`
}

// DefaultOptions returns the fixed record used for the knowledge base:
// current directory as root, titles from headings, both separators
// normalized to spaces, groups collapsed from depth 2.
func DefaultOptions() Options {
	return Options{
		DocumentRootPath:        ".",
		UseTitleFromFileHeading: true,
		HyphenToSpace:           true,
		UnderscoreToSpace:       true,
		Collapsed:               true,
		CollapseDepth:           2,
	}
}

// Clone returns a copy that shares no slices with o.
func (o Options) Clone() Options {
	c := o
	if o.ExcludePatterns != nil {
		c.ExcludePatterns = append([]string(nil), o.ExcludePatterns...)
	}
	return c
}

// NormalizeTitle turns a file or directory name into display text.
func NormalizeTitle(name string, opts Options) string {
	name = strings.TrimSuffix(name, ".md")
	if opts.HyphenToSpace {
		name = strings.ReplaceAll(name, "-", " ")
	}
	if opts.UnderscoreToSpace {
		name = strings.ReplaceAll(name, "_", " ")
	}
	return strings.TrimSpace(name)
}

type matcher struct {
	globs []glob.Glob
}

func compileExcludes(patterns []string) (matcher, error) {
	m := matcher{globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return matcher{}, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// excluded matches against both the slash-separated relative path and the base name.
func (m matcher) excluded(rel, name string) bool {
	for _, g := range m.globs {
		if g.Match(rel) || g.Match(name) {
			return true
		}
	}
	return false
}
