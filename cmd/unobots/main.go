package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Run the game server"`
	Client   ClientCmd        `cmd:"" help:"Connect as an interactive client"`
	Simulate SimulateCmd      `cmd:"" help:"Run scripted games in-process"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("unobots"),
		kong.Description("Authoritative rules server for Uno-style bot-vs-bot play"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
