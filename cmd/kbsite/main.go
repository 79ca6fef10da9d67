package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/kbsite/cmd/kbsite/commands"
	"git.home.luguber.info/inful/kbsite/internal/config"
	kberrors "git.home.luguber.info/inful/kbsite/internal/errors"
	"git.home.luguber.info/inful/kbsite/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("kbsite"),
		kong.Description("Generate the static-site configuration for a personal knowledge base."),
		kong.UsageOnError(),
		kong.Vars{
			"version":     version.Summary(),
			"config_file": config.DefaultFile,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	if err := parser.Run(commands.NewGlobal(), &cli); err != nil {
		return kberrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Report(err)
	}
	return 0
}
