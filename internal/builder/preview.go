package builder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/masmgr/gitarchive-go/internal/git"
)

// PreviewResult is what a run of the same request would archive.
type PreviewResult struct {
	RepoPath   string
	Files      []string
	CommitHash string
	Commits    []git.CommitRecord
	Warnings   []string
	Err        error
}

// Preview resolves req and collects its commit metadata without staging
// anything. OutputPath and Format are ignored.
func (b *Builder) Preview(ctx context.Context, req Request) PreviewResult {
	repo, err := filepath.Abs(req.RepoPath)
	if err != nil || req.RepoPath == "" || !isGitRepo(repo) {
		return PreviewResult{Err: fmt.Errorf("%w: %s", ErrInvalidRepo, req.RepoPath)}
	}
	filter := git.PathFilter{Include: req.Include, Exclude: req.Exclude}
	if err := filter.Validate(); err != nil {
		return PreviewResult{RepoPath: repo, Err: err}
	}

	runner := git.NewRunner(repo, b.opts.GitBinary)
	res, err := git.NewResolver(runner, filter).Resolve(ctx, req.Spec)
	if err != nil {
		return PreviewResult{RepoPath: repo, Err: err}
	}

	out := PreviewResult{RepoPath: repo, Files: res.Paths, CommitHash: res.Reference}
	collector := git.NewCollector(runner)
	collector.OnWarning = func(msg string) { out.Warnings = append(out.Warnings, msg) }
	commits, err := collector.Collect(ctx, req.Spec)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("Warning: could not collect commit details: %v", err))
	}
	out.Commits = commits
	return out
}
