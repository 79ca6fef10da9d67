package commands

import (
	"context"
	"time"

	kberrors "git.home.luguber.info/inful/kbsite/internal/errors"
	"git.home.luguber.info/inful/kbsite/internal/logfields"
	"git.home.luguber.info/inful/kbsite/internal/watch"
	"git.home.luguber.info/inful/kbsite/internal/writer"
)

// WatchCmd rebuilds the configuration until interrupted.
type WatchCmd struct {
	Output   string        `short:"o" help:"Output file, - for stdout (default from config file, else stdout)"`
	Format   string        `short:"f" help:"Output format: json, yaml or toml (default inferred from --output)"`
	DocsDir  string        `name:"docs-dir" short:"d" help:"Docs directory to watch" type:"path"`
	Debounce time.Duration `help:"Quiet period before rebuilding (default from config file, else 500ms)"`
}

func (w *WatchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	applyDocsDir(cfg, w.DocsDir)
	out, format, err := resolveOutput(cfg, w.Output, w.Format)
	if err != nil {
		return err
	}
	asm, err := cfg.NewAssembler(recorder(g), g.Logger)
	if err != nil {
		return err
	}

	build := func(ctx context.Context) error {
		err := writer.WriteTo(out, g.Stdout, asm.Build(ctx), format)
		root.flushMetrics(g, cfg)
		return err
	}
	if err := build(ctx); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = cfg.Watch.DebounceDuration()
	}
	opts := []watch.Option{watch.WithDebounce(debounce), watch.WithLogger(g.Logger)}
	if out != writer.Stdout {
		opts = append(opts, watch.WithIgnore(out))
	}
	watcher, err := watch.New(cfg.DocsDir, opts...)
	if err != nil {
		return kberrors.Wrap(err, kberrors.CategoryRuntime, kberrors.SeverityFatal, "file watcher failed")
	}

	err = watcher.Run(ctx, func(ctx context.Context) {
		if err := build(ctx); err != nil {
			g.Logger.Error("Rebuild failed", logfields.Path(out), logfields.Error(err))
			return
		}
		g.Logger.Info("Site configuration rebuilt", logfields.Path(out))
	})
	if err != nil {
		return kberrors.Wrap(err, kberrors.CategoryRuntime, kberrors.SeverityFatal, "file watcher failed")
	}
	g.Logger.Info("Watch stopped")
	return nil
}
