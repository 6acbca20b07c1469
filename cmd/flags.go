package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitarchive-go/config"
	"github.com/masmgr/gitarchive-go/internal/git"
	"github.com/masmgr/gitarchive-go/internal/output"
)

// Range flags shared by archive and preview.
func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:  "since",
			Usage: "Start date of the range, inclusive (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "until",
			Usage: "End date of the range, inclusive (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Branch for date range mode (default: from config or 'main')",
		},
		&cli.StringFlag{
			Name:  "start-sha",
			Usage: "Start commit of a SHA range (exclusive)",
		},
		&cli.StringFlag{
			Name:  "end-sha",
			Usage: "End commit of a SHA range; files are taken from it",
		},
		&cli.StringFlag{
			Name:  "commit",
			Usage: "Archive the files touched by a single commit",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:  "git-backend",
			Usage: "How file contents are read (git, go-git)",
		},
	}
}

// parseDateFlag parses a date string flag.
func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return &t, nil
}

// rangeInput is the raw range selection taken from flags.
type rangeInput struct {
	Since, Until     string
	Branch           string
	StartSHA, EndSHA string
	Commit           string
}

func rangeInputFromFlags(c *cli.Context) rangeInput {
	return rangeInput{
		Since:    c.String("since"),
		Until:    c.String("until"),
		Branch:   c.String("branch"),
		StartSHA: c.String("start-sha"),
		EndSHA:   c.String("end-sha"),
		Commit:   c.String("commit"),
	}
}

// buildRangeSpec turns the range flags into a RangeSpec. Exactly one mode
// may be selected; a date range falls back to defaultBranch.
func buildRangeSpec(in rangeInput, defaultBranch string) (git.RangeSpec, error) {
	dates := in.Since != "" || in.Until != ""
	shas := in.StartSHA != "" || in.EndSHA != ""
	single := in.Commit != ""

	selected := 0
	for _, on := range []bool{dates, shas, single} {
		if on {
			selected++
		}
	}
	switch selected {
	case 0:
		return git.RangeSpec{}, fmt.Errorf("%w: select a range with --since/--until, --start-sha/--end-sha or --commit", git.ErrInvalidRangeSpec)
	case 1:
	default:
		return git.RangeSpec{}, fmt.Errorf("%w: --since/--until, --start-sha/--end-sha and --commit are mutually exclusive", git.ErrInvalidRangeSpec)
	}

	var spec git.RangeSpec
	switch {
	case dates:
		if in.Since == "" || in.Until == "" {
			return git.RangeSpec{}, fmt.Errorf("%w: date range requires both --since and --until", git.ErrInvalidRangeSpec)
		}
		since, err := parseDateFlag(in.Since)
		if err != nil {
			return git.RangeSpec{}, err
		}
		until, err := parseDateFlag(in.Until)
		if err != nil {
			return git.RangeSpec{}, err
		}
		if until.Before(*since) {
			return git.RangeSpec{}, fmt.Errorf("%w: --until %s is before --since %s", git.ErrInvalidDate, in.Until, in.Since)
		}
		branch := in.Branch
		if branch == "" {
			branch = defaultBranch
		}
		spec = git.NewDateRange(branch, in.Since, in.Until)
	case shas:
		spec = git.NewShaRange(in.StartSHA, in.EndSHA)
	default:
		spec = git.NewSingleCommit(in.Commit)
	}

	if err := spec.Validate(); err != nil {
		return git.RangeSpec{}, err
	}
	return spec, nil
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	case "markdown", "md":
		return output.FormatMarkdown
	case "ci", "ndjson":
		return output.FormatCI
	default:
		return output.FormatConsole
	}
}

// loadConfig loads configuration from file or defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Apply overrides from CLI
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	if backend := c.String("git-backend"); backend != "" {
		cfg.Git.Backend = backend
	}
	if c.Bool("no-history") {
		cfg.History.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
