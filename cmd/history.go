package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitarchive-go/config"
	"github.com/masmgr/gitarchive-go/internal/history"
)

// HistoryCmd returns the history command and its subcommands.
func HistoryCmd() *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "List, inspect, clear or re-run recorded archive runs",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List recorded runs, newest first",
				Action: historyListAction,
			},
			{
				Name:      "show",
				Usage:     "Show one recorded run",
				ArgsUsage: "<n>",
				Action:    historyShowAction,
			},
			{
				Name:   "clear",
				Usage:  "Remove every recorded run",
				Action: historyClearAction,
			},
			{
				Name:      "rerun",
				Usage:     "Run a recorded archive again",
				ArgsUsage: "<n>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Show progress in a terminal UI",
					},
					&cli.BoolFlag{
						Name:  "no-history",
						Usage: "Do not record this run in the history file",
					},
				},
				Action: historyRerunAction,
			},
		},
		Action: historyListAction,
	}
}

func historyStore(c *cli.Context) (*config.Config, *history.Store, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	return cfg, openHistory(cfg), nil
}

// historyEntry resolves the 1-based index argument.
func historyEntry(c *cli.Context, store *history.Store) (history.Entry, error) {
	if c.NArg() != 1 {
		return history.Entry{}, fmt.Errorf("expected one history index")
	}
	n, err := strconv.Atoi(c.Args().Get(0))
	if err != nil {
		return history.Entry{}, fmt.Errorf("invalid history index %q", c.Args().Get(0))
	}
	e, ok := store.Get(n - 1)
	if !ok {
		return history.Entry{}, fmt.Errorf("no history entry %d (have %d)", n, store.Len())
	}
	return e, nil
}

func historyListAction(c *cli.Context) error {
	_, store, err := historyStore(c)
	if err != nil {
		return err
	}
	writeHistoryList(c.App.Writer, store.List())
	return nil
}

func writeHistoryList(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tWHEN\tRANGE\tFORMAT\tFILES\tOUTPUT")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			i+1,
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			entryRange(e),
			e.ArchiveFormat,
			e.ArchivedCount,
			e.OutputPath,
		)
	}
	tw.Flush()
}

func entryRange(e history.Entry) string {
	spec, err := e.Spec()
	if err != nil {
		return string(e.Mode)
	}
	return spec.Description()
}

func historyShowAction(c *cli.Context) error {
	_, store, err := historyStore(c)
	if err != nil {
		return err
	}
	e, err := historyEntry(c, store)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	writeHistoryEntry(c.App.Writer, e)
	return nil
}

func writeHistoryEntry(w io.Writer, e history.Entry) {
	label := color.New(color.FgCyan)
	row := func(name, value string) {
		label.Fprintf(w, "%-15s", name+":")
		fmt.Fprintln(w, value)
	}

	row("ID", e.ID)
	row("Timestamp", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	row("Repository", e.RepoPath)
	row("Output", e.OutputPath)
	row("Format", e.ArchiveFormat)
	row("Status", string(e.Status))
	row("Files", strconv.Itoa(e.ArchivedCount))
	row("Mode", string(e.Mode))

	keys := make([]string, 0, len(e.Parameters))
	for k := range e.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		row("  "+k, e.Parameters[k])
	}
}

func historyClearAction(c *cli.Context) error {
	_, store, err := historyStore(c)
	if err != nil {
		return err
	}
	n := store.Len()
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "Removed %d history entries.\n", n)
	return nil
}

func historyRerunAction(c *cli.Context) error {
	cfg, store, err := historyStore(c)
	if err != nil {
		return err
	}
	e, err := historyEntry(c, store)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	spec, err := e.Spec()
	if err != nil {
		return cli.Exit(fmt.Sprintf("history entry cannot be re-run: %v", err), exitUsage)
	}

	if e.ArchiveFormat != "" {
		cfg.Archive.Format = e.ArchiveFormat
	}
	b, err := newBuilder(cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	req := newRequest(cfg, e.RepoPath, spec, e.OutputPath)

	fmt.Fprintf(c.App.ErrWriter, "Re-running: %s\n", spec.Description())
	return runArchive(c, b, req, c.Bool("tui"))
}
