package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/prismicgen/cmd/prismicgen/commands"
	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
	"git.home.luguber.info/inful/prismicgen/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("prismicgen"),
		kong.Description("Generate static routes and site assets from a Prismic repository."),
		commands.Vars(version.String()),
		kong.UsageOnError(),
	)

	global := &commands.Global{Logger: slog.Default(), Stdout: os.Stdout}
	if err := parser.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
