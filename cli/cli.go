package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

func Main(args []string, journal, output io.Writer) {
	App := cli.NewApp()

	App.Name = "muster"
	App.Usage = "March a dependency change through every charm's tox gauntlet."
	App.Version = "v0.2+dev"

	App.Writer = journal

	App.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "logging level: debug, info, warn, error, or crit",
		},
	}

	App.Commands = []cli.Command{
		RunCommandPattern(output, journal),
		ScanCommandPattern(output, journal),
	}

	// Slight touch to the phrasing on subcommands not found.
	// Reporting "no help topic for 'zyx'" and exiting with a *zero* would
	// be silly; a bash script doing `muster somethingimportant` has to stop.
	App.CommandNotFound = func(ctx *cli.Context, command string) {
		panic(Exit.NewWith(
			fmt.Sprintf("Incorrect usage: '%s %v' is not a muster subcommand\n", ctx.App.Name, command),
			SetExitCode(EXIT_BADARGS),
		))
	}

	// Put some more info in our version printer.
	// Global var.  Womp womp.
	// Also, version goes to stdout.
	cli.VersionPrinter = func(ctx *cli.Context) {
		fmt.Fprintf(os.Stdout, "%v %v\n", ctx.App.Name, ctx.App.Version)
	}

	// Invoking version as a subcommand should also fly.
	App.Commands = append(App.Commands,
		cli.Command{
			Name:  "version",
			Usage: "Shows the version of muster",
			Action: func(ctx *cli.Context) {
				cli.ShowVersion(ctx)
			},
		},
	)

	if err := App.Run(args); err != nil {
		panic(Exit.NewWith(
			fmt.Sprintf("Incorrect usage: %s", err),
			SetExitCode(EXIT_BADARGS),
		))
	}
}
