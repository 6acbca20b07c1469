package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitarchive-go/internal/git"
	"github.com/masmgr/gitarchive-go/internal/output"
)

// PreviewCmd returns the preview command.
func PreviewCmd() *cli.Command {
	flags := append(rangeFlags(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown, ci)",
			Value:   "console",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of most active files to show (0: all)",
			Value:   20,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
	)

	return &cli.Command{
		Name:      "preview",
		Aliases:   []string{"p"},
		Usage:     "List the files and commits an archive run would include",
		ArgsUsage: "[repository path]",
		Flags:     flags,
		Action:    previewAction,
	}
}

func previewAction(c *cli.Context) error {
	cmdCtx, err := NewCommandContext(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	b, err := cmdCtx.Builder()
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	p := b.Preview(c.Context, cmdCtx.Request(""))
	if p.Err != nil {
		return fmt.Errorf("preview failed: %w", p.Err)
	}
	for _, w := range p.Warnings {
		color.New(color.FgYellow).Fprintln(os.Stderr, w)
	}

	res := &git.Resolution{Reference: p.CommitHash, Paths: p.Files}
	report := output.NewPreviewReport(p.RepoPath, cmdCtx.Spec, res, p.Commits)

	opts := OutputOptions(c)
	writer := output.NewPreviewReportWriter(opts.Format)
	return writer.Write(report, opts)
}
