package site

import (
	"fmt"

	"git.home.luguber.info/inful/kbsite/internal/revision"
	"git.home.luguber.info/inful/kbsite/internal/sidebar"
)

// SearchProviderLocal selects the framework's built-in client-side search.
const SearchProviderLocal = "local"

const footerFormat = "Version: %s | Updated: %s"

// Config is the site configuration consumed by the static-site framework.
// It is built once per run and never mutated afterwards; Build hands out
// values that share no memory with the Assembler.
type Config struct {
	Title       string      `json:"title" yaml:"title" toml:"title"`
	Description string      `json:"description" yaml:"description" toml:"description"`
	Base        string      `json:"base" yaml:"base" toml:"base"`
	ThemeConfig ThemeConfig `json:"themeConfig" yaml:"themeConfig" toml:"themeConfig"`

	// SidebarOptions is the record the sidebar was generated with.
	SidebarOptions sidebar.Options `json:"-" yaml:"-" toml:"-"`
	// Revision is the metadata the footer was built from.
	Revision revision.Metadata `json:"-" yaml:"-" toml:"-"`
}

type ThemeConfig struct {
	Nav         []NavItem      `json:"nav" yaml:"nav" toml:"nav"`
	Sidebar     []sidebar.Item `json:"sidebar" yaml:"sidebar" toml:"sidebar"`
	Search      Search         `json:"search" yaml:"search" toml:"search"`
	Footer      Footer         `json:"footer" yaml:"footer" toml:"footer"`
	SocialLinks []SocialLink   `json:"socialLinks" yaml:"socialLinks" toml:"socialLinks"`
}

type NavItem struct {
	Text string `json:"text" yaml:"text" toml:"text"`
	Link string `json:"link" yaml:"link" toml:"link"`
}

type SocialLink struct {
	Icon string `json:"icon" yaml:"icon" toml:"icon"`
	Link string `json:"link" yaml:"link" toml:"link"`
}

type Search struct {
	Provider string `json:"provider" yaml:"provider" toml:"provider"`
}

type Footer struct {
	Message string `json:"message" yaml:"message" toml:"message"`
}

// FooterMessage renders the footer line for md.
func FooterMessage(md revision.Metadata) string {
	return fmt.Sprintf(footerFormat, md.Hash, md.Date)
}

func cloneItems(items []sidebar.Item) []sidebar.Item {
	if items == nil {
		return nil
	}
	out := make([]sidebar.Item, len(items))
	for i, it := range items {
		out[i] = it
		out[i].Items = cloneItems(it.Items)
		if it.Collapsed != nil {
			v := *it.Collapsed
			out[i].Collapsed = &v
		}
	}
	return out
}
