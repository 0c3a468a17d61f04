package main

import (
	"github.com/alecthomas/kong"

	"github.com/ryan-huang1/r02ctl/internal/cli"
)

func main() {
	var root cli.CLI
	ctx := kong.Parse(&root,
		kong.Name("r02ctl"),
		kong.Description("Control tool for R02-family BLE smart rings."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&root))
}
