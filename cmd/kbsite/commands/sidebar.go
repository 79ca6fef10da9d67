package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	kberrors "git.home.luguber.info/inful/kbsite/internal/errors"
	"git.home.luguber.info/inful/kbsite/internal/sidebar"
	"git.home.luguber.info/inful/kbsite/internal/writer"
)

// SidebarCmd prints the sidebar tree without touching git.
type SidebarCmd struct {
	Format  string `short:"f" help:"Output format: text, json, yaml or toml" enum:"text,json,yaml,toml" default:"text"`
	DocsDir string `name:"docs-dir" short:"d" help:"Docs directory the sidebar is generated from" type:"path"`
}

// TOML documents cannot have an array at the top level.
type sidebarOutput struct {
	Sidebar []sidebar.Item `json:"sidebar" yaml:"sidebar" toml:"sidebar"`
}

func (s *SidebarCmd) Run(_ context.Context, g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	applyDocsDir(cfg, s.DocsDir)
	asm, err := cfg.NewAssembler(recorder(g), g.Logger)
	if err != nil {
		return err
	}

	opts := asm.SidebarOptions()
	items, err := sidebar.DiskGenerator{}.Generate(opts)
	if err != nil {
		return kberrors.SidebarFailed(opts.DocumentRootPath, err)
	}
	recorder(g).SetSidebarItems(sidebar.Count(items))
	root.flushMetrics(g, cfg)

	if s.Format == "" || s.Format == "text" {
		return printTree(g.Stdout, items, 0)
	}
	format, err := writer.ParseFormat(s.Format)
	if err != nil {
		return err
	}
	data, err := writer.Marshal(sidebarOutput{Sidebar: items}, format)
	if err != nil {
		return err
	}
	_, err = g.Stdout.Write(data)
	return err
}

func printTree(w io.Writer, items []sidebar.Item, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, it := range items {
		line := indent + it.Text
		if it.Link != "" {
			line += "  " + it.Link
		}
		if it.Collapsed != nil && *it.Collapsed {
			line += "  (collapsed)"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if err := printTree(w, it.Items, depth+1); err != nil {
			return err
		}
	}
	return nil
}
