package git

import (
	"context"
	"fmt"
)

// Resolver turns a range specification into a reference commit and the set
// of paths touched in the range.
type Resolver struct {
	runner *Runner
	filter PathFilter
}

// NewResolver creates a resolver. The filter is applied to the touched paths
// after deduplication.
func NewResolver(runner *Runner, filter PathFilter) *Resolver {
	return &Resolver{runner: runner, filter: filter}
}

// Resolve determines the reference commit and the touched path set.
// An empty path set is not an error; callers check Resolution.Empty.
func (r *Resolver) Resolve(ctx context.Context, spec RangeSpec) (*Resolution, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Resolution
		err error
	)
	switch spec.Mode() {
	case ModeDateRange:
		res, err = r.resolveDateRange(ctx, *spec.Date)
	case ModeShaRange:
		res, err = r.resolveShaRange(ctx, *spec.Shas)
	default:
		res, err = r.resolveSingleCommit(ctx, *spec.Commit)
	}
	if err != nil {
		return nil, err
	}

	res.Paths = r.filter.Apply(res.Paths)
	return res, nil
}

func (r *Resolver) resolveDateRange(ctx context.Context, d DateRange) (*Resolution, error) {
	if _, _, err := d.Window(); err != nil {
		return nil, err
	}

	latest := r.runner.Run(ctx, "rev-list", "-1", "--before="+d.untilArg(), d.Branch)
	ref := latest.Text()
	if !latest.OK() || ref == "" {
		return nil, fmt.Errorf("%w: could not find a commit on branch '%s' before '%s'", ErrNoCommitInRange, d.Branch, d.End)
	}

	files := r.runner.Run(ctx, "log", d.Branch,
		"--since="+d.sinceArg(),
		"--until="+d.untilArg(),
		"--name-only",
		"--pretty=format:",
	)
	if !files.OK() {
		return nil, fmt.Errorf("%w: %v", ErrFileListFailed, files.Err)
	}

	return &Resolution{Reference: ref, Paths: uniqueSorted(files.Lines())}, nil
}

func (r *Resolver) resolveShaRange(ctx context.Context, s ShaRange) (*Resolution, error) {
	// The end SHA is used as-is; a bad SHA surfaces through the diff query.
	paths, err := diffPaths(ctx, r.runner, s.Start, s.End)
	if err != nil {
		return nil, err
	}
	return &Resolution{Reference: s.End, Paths: paths}, nil
}

func (r *Resolver) resolveSingleCommit(ctx context.Context, c SingleCommit) (*Resolution, error) {
	files := r.runner.Run(ctx, "show", "--name-only", "--pretty=format:", c.SHA)
	if !files.OK() {
		return nil, fmt.Errorf("%w: %v", ErrFileListFailed, files.Err)
	}
	return &Resolution{Reference: c.SHA, Paths: uniqueSorted(files.Lines())}, nil
}
