package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/siteplan/cmd/siteplan/commands"
	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
	"git.home.luguber.info/inful/siteplan/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("siteplan"),
		kong.Description("Resolve documentation navigation and bundler configuration into one validated plan."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout}
	err := ctx.Run(global, &cli)
	ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
}
