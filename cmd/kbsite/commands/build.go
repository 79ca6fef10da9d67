package commands

import (
	"context"

	"git.home.luguber.info/inful/kbsite/internal/config"
	"git.home.luguber.info/inful/kbsite/internal/logfields"
	"git.home.luguber.info/inful/kbsite/internal/writer"
)

// BuildCmd implements the 'config' command: build once and write the result.
type BuildCmd struct {
	Output  string `short:"o" help:"Output file, - for stdout (default from config file, else stdout)"`
	Format  string `short:"f" help:"Output format: json, yaml or toml (default inferred from --output)"`
	DocsDir string `name:"docs-dir" short:"d" help:"Docs directory the sidebar is generated from" type:"path"`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	applyDocsDir(cfg, b.DocsDir)
	out, format, err := resolveOutput(cfg, b.Output, b.Format)
	if err != nil {
		return err
	}

	asm, err := cfg.NewAssembler(recorder(g), g.Logger)
	if err != nil {
		return err
	}
	site := asm.Build(ctx)
	defer root.flushMetrics(g, cfg)

	if err := writer.WriteTo(out, g.Stdout, site, format); err != nil {
		return err
	}
	if out != writer.Stdout {
		g.Logger.Info("Wrote site configuration", logfields.Path(out), logfields.Format(string(format)))
	}
	return nil
}

// applyDocsDir points the sidebar at dir. The revision reader follows unless
// the configuration file gave it a directory of its own.
func applyDocsDir(cfg *config.Config, dir string) {
	if dir == "" {
		return
	}
	if cfg.Revision.Dir == "" || cfg.Revision.Dir == cfg.DocsDir {
		cfg.Revision.Dir = dir
	}
	cfg.DocsDir = dir
}

// resolveOutput merges the output flags over the configuration. An explicit
// --format wins; otherwise a flag-provided path decides by extension.
func resolveOutput(cfg *config.Config, outFlag, formatFlag string) (string, writer.Format, error) {
	out := cfg.Output.Path
	format := cfg.OutputFormat()
	if outFlag != "" {
		out = outFlag
		if out != writer.Stdout {
			format = writer.FormatFromPath(out)
		}
	}
	if formatFlag != "" {
		f, err := writer.ParseFormat(formatFlag)
		if err != nil {
			return "", "", err
		}
		format = f
	}
	return out, format, nil
}
