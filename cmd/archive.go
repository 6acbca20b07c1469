package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitarchive-go/internal/archive"
	"github.com/masmgr/gitarchive-go/internal/builder"
	"github.com/masmgr/gitarchive-go/internal/ui"
)

// Exit codes of the archive command.
const (
	exitFailed    = 1
	exitUsage     = 2
	exitBusy      = 3
	exitCancelled = 130
)

// ArchiveCmd returns the archive command.
func ArchiveCmd() *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Aliases:   []string{"a"},
		Usage:     "Archive the files changed in a range, as of the range's last commit",
		ArgsUsage: "[repository path]",
		Flags:     archiveFlags(),
		Action:    archiveAction,
	}
}

func archiveFlags() []cli.Flag {
	return append(rangeFlags(),
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output path; the extension is replaced by the format's",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Archive format (zip, tar, tar.gz; default: from config)",
		},
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Show progress in a terminal UI",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record this run in the history file",
		},
	)
}

func archiveAction(c *cli.Context) error {
	cmdCtx, err := NewCommandContext(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	if c.IsSet("format") {
		if _, err := archive.ParseFormat(c.String("format")); err != nil {
			return cli.Exit(err.Error(), exitUsage)
		}
		cmdCtx.Config.Archive.Format = c.String("format")
	}
	out, err := requireOutput(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	b, err := cmdCtx.Builder()
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	req := cmdCtx.Request(out)

	return runArchive(c, b, req, c.Bool("tui"))
}

// runArchive executes req with either front end and maps the outcome to an
// exit code.
func runArchive(c *cli.Context, b *builder.Builder, req builder.Request, tui bool) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var res builder.Result
	if tui {
		var err error
		res, err = ui.RunArchive(ctx, b, req, ui.Options{Title: "Git Archive: " + filepath.Base(req.OutputPath)})
		if err != nil {
			return fmt.Errorf("terminal UI failed: %w", err)
		}
	} else {
		rep := newConsoleReporter(c.App.ErrWriter, !color.NoColor)
		res = b.Run(ctx, req, rep)
		rep.Finish()
	}

	return outcomeError(c, res)
}

func outcomeError(c *cli.Context, res builder.Result) error {
	switch res.Outcome {
	case builder.OutcomeCompleted:
		w := c.App.Writer
		color.New(color.FgGreen).Fprintf(w, "Archived %d of %d files.\n", len(res.Archived), res.Touched)
		fmt.Fprintf(w, "Archive:   %s\n", res.ArchivePath)
		fmt.Fprintf(w, "Changelog: %s\n", res.ChangelogPath)
		return nil
	case builder.OutcomeNothingToArchive:
		return nil
	case builder.OutcomeCancelled:
		return cli.Exit("Operation cancelled.", exitCancelled)
	case builder.OutcomeInvalidRepo, builder.OutcomeInvalidSpec:
		return cli.Exit(res.Err.Error(), exitUsage)
	case builder.OutcomeBusy:
		return cli.Exit(res.Err.Error(), exitBusy)
	default:
		msg := "archive failed"
		if res.Err != nil {
			msg = res.Err.Error()
		}
		return cli.Exit(msg, exitFailed)
	}
}

func archiveFormat(s string) archive.Format {
	f, err := archive.ParseFormat(s)
	if err != nil {
		return archive.Format(s)
	}
	return f
}
