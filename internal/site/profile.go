package site

import (
	"slices"
	"strings"

	kberrors "git.home.luguber.info/inful/kbsite/internal/errors"
)

// GitHubURL is the repository the knowledge base is published from.
const GitHubURL = "https://github.com/inful/kb"

// Profile holds the static literals of the site.
type Profile struct {
	Title       string
	Description string
	Base        string
	Nav         []NavItem
	SocialLinks []SocialLink
}

// DefaultProfile returns the knowledge base's built-in profile.
func DefaultProfile() Profile {
	return Profile{
		Title:       "Knowledge Base",
		Description: "Personal notes and references",
		Base:        "/kb/",
		Nav: []NavItem{
			{Text: "Home", Link: "/"},
			{Text: "Programming", Link: "/programming/"},
			{Text: "Tools", Link: "/tools/"},
		},
		SocialLinks: []SocialLink{
			{Icon: "github", Link: GitHubURL},
		},
	}
}

// Overrides replaces profile fields that are set. Slices replace wholesale.
type Overrides struct {
	Title       string       `yaml:"title,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Base        string       `yaml:"base,omitempty"`
	Nav         []NavItem    `yaml:"nav,omitempty"`
	SocialLinks []SocialLink `yaml:"social_links,omitempty"`
}

// Apply returns a copy of p with o applied.
func (p Profile) Apply(o Overrides) Profile {
	out := p.clone()
	if o.Title != "" {
		out.Title = o.Title
	}
	if o.Description != "" {
		out.Description = o.Description
	}
	if o.Base != "" {
		out.Base = o.Base
	}
	if len(o.Nav) > 0 {
		out.Nav = slices.Clone(o.Nav)
	}
	if len(o.SocialLinks) > 0 {
		out.SocialLinks = slices.Clone(o.SocialLinks)
	}
	return out
}

// Validate checks the invariants every produced configuration relies on.
func (p Profile) Validate() error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return kberrors.ValidationFailed("title", "must not be empty")
	case strings.TrimSpace(p.Description) == "":
		return kberrors.ValidationFailed("description", "must not be empty")
	case !strings.HasPrefix(p.Base, "/") || !strings.HasSuffix(p.Base, "/"):
		return kberrors.ValidationFailed("base", "must start and end with /")
	}
	for i, n := range p.Nav {
		if n.Text == "" || n.Link == "" {
			return kberrors.ValidationFailed("nav", "entry needs text and link").WithContext("index", i)
		}
	}
	for _, s := range p.SocialLinks {
		if s.Icon == "github" && s.Link != "" {
			return nil
		}
	}
	return kberrors.ValidationFailed("social_links", "a github link is required")
}

func (p Profile) clone() Profile {
	c := p
	c.Nav = slices.Clone(p.Nav)
	c.SocialLinks = slices.Clone(p.SocialLinks)
	return c
}
