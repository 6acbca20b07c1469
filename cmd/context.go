package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitarchive-go/config"
	"github.com/masmgr/gitarchive-go/internal/builder"
	"github.com/masmgr/gitarchive-go/internal/git"
	"github.com/masmgr/gitarchive-go/internal/history"
	"github.com/masmgr/gitarchive-go/internal/output"
)

// CommandContext holds common state for command execution.
// It encapsulates the setup shared by archive and preview.
type CommandContext struct {
	Config   *config.Config
	RepoPath string
	Spec     git.RangeSpec
}

// NewCommandContext creates a context from CLI flags.
// It loads the configuration and builds the range selection.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	spec, err := buildRangeSpec(rangeInputFromFlags(c), cfg.Archive.DefaultBranch)
	if err != nil {
		return nil, err
	}

	repoPath := c.String("repo")
	if c.NArg() > 0 {
		repoPath = c.Args().Get(0)
	}

	return &CommandContext{
		Config:   cfg,
		RepoPath: repoPath,
		Spec:     spec,
	}, nil
}

// Builder creates a Builder from the configuration. History is recorded
// when enabled.
func (ctx *CommandContext) Builder() (*builder.Builder, error) {
	return newBuilder(ctx.Config)
}

// Request creates a builder request for the given output.
func (ctx *CommandContext) Request(outputPath string) builder.Request {
	return newRequest(ctx.Config, ctx.RepoPath, ctx.Spec, outputPath)
}

func newBuilder(cfg *config.Config) (*builder.Builder, error) {
	backend, err := git.ParseBackend(cfg.Git.Backend)
	if err != nil {
		return nil, err
	}
	opts := builder.Options{
		Backend:   backend,
		GitBinary: cfg.Git.Binary,
	}
	if cfg.History.Enabled {
		opts.Recorder = openHistory(cfg)
	}
	return builder.New(opts), nil
}

func newRequest(cfg *config.Config, repoPath string, spec git.RangeSpec, outputPath string) builder.Request {
	return builder.Request{
		RepoPath:   repoPath,
		Spec:       spec,
		OutputPath: outputPath,
		Format:     archiveFormat(cfg.Archive.Format),
		Include:    cfg.Filters.Include,
		Exclude:    cfg.Filters.Exclude,
	}
}

func openHistory(cfg *config.Config) *history.Store {
	return history.Open(cfg.History.Path, cfg.History.MaxEntries)
}

// OutputOptions creates OutputOptions from CLI flags.
func OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(c.String("format")),
		Top:        c.Int("top"),
		OutputPath: c.String("output"),
	}
}

func requireOutput(c *cli.Context) (string, error) {
	out := c.String("output")
	if out == "" {
		return "", fmt.Errorf("--output is required")
	}
	return out, nil
}
