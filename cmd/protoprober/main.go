package main

import (
	"context"
	"os"

	"github.com/jptrs93/protoprober/internal/cmd"
	"github.com/jptrs93/protoprober/internal/configpaths"
	"github.com/jptrs93/protoprober/internal/log"

	"github.com/alecthomas/kong"
)

func main() {
	userCfg := configpaths.FindUserConfig(os.Args[1:])

	var cli cmd.CLI
	options := []kong.Option{
		kong.Name("protoprober"),
		kong.Description("Generate gRPC prober clients that call every method of a service once."),
		kong.UsageOnError(),
	}
	// Flags and env override values loaded from config files.
	ctx := kong.Parse(&cli, append(options, configpaths.Options(userCfg)...)...)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File, os.Stderr)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)
	ctx.BindTo(context.Background(), (*context.Context)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
