package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "gitarchive",
		Usage:     "Archive the files changed in a Git range, with a changelog",
		Version:   "1.0.0",
		ArgsUsage: "[repository path]",
		Commands: []*cli.Command{
			ArchiveCmd(),
			PreviewCmd(),
			HistoryCmd(),
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		}, archiveFlags()...),
		Action: defaultAction,
		// Exit codes are handled by Run so that App stays usable in tests.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// defaultAction handles the root command.
// When a repository path is provided as an argument, it runs the archive command.
func defaultAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}
	return archiveAction(c)
}

// exitCode maps an error returned by App().Run to a process exit code.
func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return exitFailed
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
