package main

import (
	"context"
	stdErrors "errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/claimpilot/pagegen/cmd/pagegen/commands"
	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &commands.CLI{}
	global := &commands.Global{Stdout: os.Stdout}
	parser, err := kong.New(cli,
		kong.Name("pagegen"),
		kong.Description("Generate the static SEO pages of the marketing site."),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return errors.NewCLIErrorAdapter(false, nil).Handle(errors.WrapError(err, errors.CategoryInternal, "build CLI").Build())
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		var perr *kong.ParseError
		if stdErrors.As(err, &perr) {
			_ = perr.Context.PrintUsage(true)
		}
		parser.Errorf("%s", err)
		return errors.ExitValidation
	}

	err = kctx.Run(global, cli)
	return errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).Handle(err)
}
