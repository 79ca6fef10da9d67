package commands

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/kbsite/internal/logfields"
	"git.home.luguber.info/inful/kbsite/internal/revision"
	"git.home.luguber.info/inful/kbsite/internal/writer"
)

// RevisionCmd prints the metadata the footer would use.
type RevisionCmd struct {
	Backend string `help:"Metadata backend: git or gogit (default from config file)"`
	Format  string `short:"f" help:"Output format: text, json, yaml or toml" enum:"text,json,yaml,toml" default:"text"`
	DocsDir string `name:"docs-dir" short:"d" help:"Directory inside the repository to query" type:"path"`
}

type revisionOutput struct {
	Hash     string `json:"hash" yaml:"hash" toml:"hash"`
	Date     string `json:"date" yaml:"date" toml:"date"`
	Degraded bool   `json:"degraded" yaml:"degraded" toml:"degraded"`
}

func (r *RevisionCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	applyDocsDir(cfg, r.DocsDir)
	if r.Backend != "" {
		cfg.Revision.Backend = strings.ToLower(r.Backend)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	defer root.flushMetrics(g, cfg)

	res := revision.NewResolver(cfg.RevisionReader(),
		revision.WithRecorder(recorder(g)),
		revision.WithLogger(g.Logger),
	).Resolve(ctx)
	if res.Degraded {
		g.Logger.Warn("Revision metadata unavailable, footer will show fallback",
			logfields.Backend(cfg.Revision.Backend), logfields.Error(res.Err))
	}

	if r.Format == "" || r.Format == "text" {
		_, err := fmt.Fprintf(g.Stdout, "%s %s\n", res.Hash, res.Date)
		return err
	}
	format, err := writer.ParseFormat(r.Format)
	if err != nil {
		return err
	}
	data, err := writer.Marshal(revisionOutput{Hash: res.Hash, Date: res.Date, Degraded: res.Degraded}, format)
	if err != nil {
		return err
	}
	_, err = g.Stdout.Write(data)
	return err
}
