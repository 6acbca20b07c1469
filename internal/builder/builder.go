// Package builder runs the archive pipeline: resolve a range, stage the
// touched files at the reference commit, package them and write a changelog.
package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/masmgr/gitarchive-go/internal/aggregation"
	"github.com/masmgr/gitarchive-go/internal/archive"
	"github.com/masmgr/gitarchive-go/internal/git"
	"github.com/masmgr/gitarchive-go/internal/history"
	"github.com/masmgr/gitarchive-go/internal/output"
)

// ErrRunInProgress is returned when a run to the same output is active.
var ErrRunInProgress = errors.New("an archive run to this output is already in progress")

// ErrInvalidRepo is returned when the repository path has no .git entry.
var ErrInvalidRepo = errors.New("not a valid git repository")

// Outcome is the terminal state of a run.
type Outcome string

const (
	OutcomeCompleted        Outcome = "completed"
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeInvalidRepo      Outcome = "invalid_repo"
	OutcomeInvalidSpec      Outcome = "invalid_spec"
	OutcomeUnresolvable     Outcome = "unresolvable"
	OutcomeNothingToArchive Outcome = "nothing_to_archive"
	OutcomeNothingArchived  Outcome = "nothing_archived"
	OutcomeFailed           Outcome = "failed"
	OutcomeBusy             Outcome = "busy"
)

// Request describes one archive run.
type Request struct {
	RepoPath   string
	Spec       git.RangeSpec
	OutputPath string
	Format     archive.Format
	Include    []string
	Exclude    []string
}

// Result reports how a run ended. Err is set for every outcome other than
// OutcomeCompleted and OutcomeNothingToArchive.
type Result struct {
	Outcome       Outcome
	Err           error
	Reference     string
	Touched       int
	Archived      []string
	Skipped       []string
	ArchivePath   string
	ChangelogPath string
}

// Recorder stores completed runs.
type Recorder interface {
	Append(e history.Entry) error
}

// Options configures a Builder.
type Options struct {
	Backend   git.Backend
	GitBinary string
	// TempDir is the parent of scratch directories; "" uses the OS default.
	TempDir string
	// Recorder, if set, receives an entry for every completed run.
	Recorder Recorder
	// BlobSource overrides the blob source derived from Backend.
	BlobSource func(runner *git.Runner) git.BlobSource
}

// Builder executes archive runs. One Builder may run several requests
// concurrently as long as their outputs differ.
type Builder struct {
	opts Options

	mu     sync.Mutex
	active map[string]struct{}
}

// New creates a Builder.
func New(opts Options) *Builder {
	return &Builder{opts: opts, active: make(map[string]struct{})}
}

func (b *Builder) acquire(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, busy := b.active[key]; busy {
		return false
	}
	b.active[key] = struct{}{}
	return true
}

func (b *Builder) release(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.active, key)
}

func (b *Builder) blobSource(runner *git.Runner) git.BlobSource {
	if b.opts.BlobSource != nil {
		return b.opts.BlobSource(runner)
	}
	return git.NewBlobSource(b.opts.Backend, runner)
}

// Run executes req to completion or cancellation. It never returns a Go
// error: every terminal state is an Outcome plus at least one log line.
func (b *Builder) Run(ctx context.Context, req Request, rep Reporter) (res Result) {
	if rep == nil {
		rep = NopReporter{}
	}
	r := &run{b: b, req: req, rep: rep, prog: &tracker{rep: rep}}

	key := req.OutputPath
	if abs, err := filepath.Abs(archive.BasePath(req.OutputPath)); err == nil {
		key = abs
	}
	if !b.acquire(key) {
		r.log(LevelError, "Error: "+ErrRunInProgress.Error())
		return Result{Outcome: OutcomeBusy, Err: ErrRunInProgress}
	}
	defer b.release(key)

	defer func() {
		if p := recover(); p != nil {
			r.removeProduced()
			r.log(LevelError, fmt.Sprintf("An unexpected error occurred: %v", p))
			res = Result{Outcome: OutcomeFailed, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	return r.execute(ctx)
}

// run holds the state of one pipeline execution.
type run struct {
	b    *Builder
	req  Request
	rep  Reporter
	prog *tracker

	scratch  string
	produced []string
	// staged maps a scratch location to the repository path written there.
	staged map[string]string
}

func (r *run) log(level Level, msg string) {
	r.rep.Log(Entry{Level: level, Message: msg})
}

func (r *run) execute(ctx context.Context) Result {
	req := r.req

	// Validate.
	if ctx.Err() != nil {
		return r.cancel(ctx)
	}
	r.prog.report(progressValidate, "Validating repository")

	repo, err := filepath.Abs(req.RepoPath)
	if err != nil || req.RepoPath == "" || !isGitRepo(repo) {
		r.log(LevelError, fmt.Sprintf("Error: Not a valid git repository: '%s'", req.RepoPath))
		return Result{Outcome: OutcomeInvalidRepo, Err: fmt.Errorf("%w: %s", ErrInvalidRepo, req.RepoPath)}
	}
	if err := req.Spec.Validate(); err != nil {
		return r.fail(OutcomeInvalidSpec, err)
	}
	filter := git.PathFilter{Include: req.Include, Exclude: req.Exclude}
	if err := filter.Validate(); err != nil {
		return r.fail(OutcomeInvalidSpec, err)
	}
	format, err := archive.ParseFormat(string(req.Format))
	if err != nil {
		return r.fail(OutcomeInvalidSpec, err)
	}
	if req.OutputPath == "" {
		return r.fail(OutcomeInvalidSpec, errors.New("no output path given"))
	}
	containerPath, changelogPath := archive.OutputPaths(req.OutputPath, format)

	r.log(LevelInfo, "Processing repository: "+repo)
	r.log(LevelInfo, "Mode: "+req.Spec.Description())

	// Resolve.
	if ctx.Err() != nil {
		return r.cancel(ctx)
	}
	r.prog.report(progressResolve, "Resolving range")

	// Queries run detached from cancellation; ctx is polled between them.
	gctx := context.WithoutCancel(ctx)
	runner := git.NewRunner(repo, r.b.opts.GitBinary)

	resolution, err := git.NewResolver(runner, filter).Resolve(gctx, req.Spec)
	if err != nil {
		return r.fail(OutcomeUnresolvable, err)
	}
	r.log(LevelInfo, fmt.Sprintf("Found %d unique files.", len(resolution.Paths)))
	if resolution.Empty() {
		r.log(LevelWarn, "No files changed in the specified range or commit.")
		r.prog.report(progressDone, "Nothing to archive")
		return Result{Outcome: OutcomeNothingToArchive, Reference: resolution.Reference}
	}
	r.log(LevelInfo, "Using state of files from commit: "+git.ShortSHA(resolution.Reference, 10))

	// Collect metadata.
	if ctx.Err() != nil {
		return r.cancel(ctx)
	}
	r.prog.report(progressMetadata, "Collecting commit metadata")

	collector := git.NewCollector(runner)
	collector.OnWarning = func(msg string) { r.log(LevelWarn, msg) }
	commits, err := collector.Collect(gctx, req.Spec)
	if err != nil {
		r.log(LevelWarn, fmt.Sprintf("Warning: could not collect commit details (%v); the changelog will list files only.", err))
		commits = nil
	}

	// Scratch directory.
	if ctx.Err() != nil {
		return r.cancel(ctx)
	}
	scratch, err := os.MkdirTemp(r.b.opts.TempDir, "git-archive-")
	if err != nil {
		return r.fail(OutcomeFailed, fmt.Errorf("create temporary directory: %w", err))
	}
	r.scratch = scratch
	defer r.cleanup()
	r.log(LevelInfo, "Created temporary directory: "+scratch)
	r.prog.report(progressStage, "Preparing files")

	// Stage.
	blobs := r.b.blobSource(runner)
	total := len(resolution.Paths)
	archived := make([]string, 0, total)
	var skipped []string
	for i, path := range resolution.Paths {
		if ctx.Err() != nil {
			return r.cancel(ctx)
		}

		ok, err := r.stage(gctx, blobs, resolution.Reference, path)
		if err != nil {
			return r.fail(OutcomeFailed, err)
		}
		if ok {
			archived = append(archived, path)
		} else {
			skipped = append(skipped, path)
		}
		r.prog.report(stagePercent(i+1, total), fmt.Sprintf("Staging files (%d/%d)", i+1, total))
	}

	if len(archived) == 0 {
		r.log(LevelError, "No files could be archived. Aborting.")
		return Result{
			Outcome:   OutcomeNothingArchived,
			Err:       errors.New("no files could be archived"),
			Reference: resolution.Reference,
			Touched:   total,
			Skipped:   skipped,
		}
	}

	// Compress.
	if ctx.Err() != nil {
		return r.cancel(ctx)
	}
	r.prog.report(progressCompress, "Compressing")

	modTime, err := runner.CommitTime(gctx, resolution.Reference)
	if err != nil {
		r.log(LevelWarn, fmt.Sprintf("Warning: could not read commit time (%v); using a fixed timestamp.", err))
		modTime = time.Time{}
	}
	r.log(LevelInfo, fmt.Sprintf("Creating %s file: %s", format, containerPath))
	if _, err := archive.WriteDir(format, scratch, containerPath, archive.Options{ModTime: modTime}); err != nil {
		return r.fail(OutcomeFailed, err)
	}
	r.produced = append(r.produced, containerPath)
	r.log(LevelSuccess, fmt.Sprintf("Successfully created %s archive.", format))

	// Changelog.
	if ctx.Err() != nil {
		return r.cancel(ctx)
	}
	r.prog.report(progressLog, "Writing changelog")

	cl := output.Changelog{
		ArchiveName: filepath.Base(containerPath),
		RepoPath:    repo,
		RangeLines:  req.Spec.ChangelogLines(),
		Summary:     aggregation.Summarize(commits, archived),
	}
	r.log(LevelInfo, "Creating changelog file: "+changelogPath)
	if err := output.WriteChangelogFile(changelogPath, cl); err != nil {
		return r.fail(OutcomeFailed, err)
	}
	r.produced = append(r.produced, changelogPath)
	r.log(LevelSuccess, "Successfully created changelog file.")

	r.prog.report(progressDone, "Completed")
	r.log(LevelSuccess, "--- PROCESS COMPLETE ---")

	r.record(repo, format, len(archived))

	return Result{
		Outcome:       OutcomeCompleted,
		Reference:     resolution.Reference,
		Touched:       total,
		Archived:      archived,
		Skipped:       skipped,
		ArchivePath:   containerPath,
		ChangelogPath: changelogPath,
	}
}

// stage writes path at ref into the scratch directory. A path that cannot be
// read from the reference tree is skipped with a warning; a filesystem
// failure is returned as an error.
func (r *run) stage(ctx context.Context, blobs git.BlobSource, ref, path string) (bool, error) {
	skip := func() (bool, error) {
		r.log(LevelWarn, fmt.Sprintf("Warning: Could not find '%s' in commit %s. Skipping.", path, git.ShortSHA(ref, 10)))
		return false, nil
	}

	dest, err := archive.StagePath(r.scratch, path)
	if err != nil {
		return skip()
	}
	if prev, ok := r.staged[dest]; ok {
		r.log(LevelWarn, fmt.Sprintf("Warning: '%s' stages to the same location as '%s'. Skipping.", path, prev))
		return false, nil
	}
	data, err := blobs.Blob(ctx, ref, path)
	if err != nil {
		return skip()
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("stage %s: %w", path, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return false, fmt.Errorf("stage %s: %w", path, err)
	}
	if r.staged == nil {
		r.staged = map[string]string{}
	}
	r.staged[dest] = path
	return true, nil
}

func (r *run) record(repo string, format archive.Format, archived int) {
	if r.b.opts.Recorder == nil {
		return
	}
	entry := history.Entry{
		RepoPath:      repo,
		OutputPath:    r.req.OutputPath,
		Mode:          r.req.Spec.Mode(),
		Parameters:    r.req.Spec.Parameters(),
		ArchiveFormat: string(format),
		Status:        history.StatusSuccess,
		ArchivedCount: archived,
	}
	if err := r.b.opts.Recorder.Append(entry); err != nil {
		r.log(LevelWarn, "Warning: could not save run history: "+err.Error())
	}
}

func (r *run) fail(outcome Outcome, err error) Result {
	r.removeProduced()
	r.log(LevelError, "Error: "+err.Error())
	return Result{Outcome: outcome, Err: err}
}

func (r *run) cancel(ctx context.Context) Result {
	r.removeProduced()
	r.log(LevelCancel, "Operation cancelled by user.")
	r.prog.cancelled()
	err := ctx.Err()
	if err == nil {
		err = context.Canceled
	}
	return Result{Outcome: OutcomeCancelled, Err: err}
}

// removeProduced deletes outputs already written by an unfinished run.
func (r *run) removeProduced() {
	for _, p := range r.produced {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			r.log(LevelWarn, fmt.Sprintf("Warning: could not remove %s: %v", p, err))
		}
	}
	r.produced = nil
}

func (r *run) cleanup() {
	if r.scratch == "" {
		return
	}
	r.log(LevelInfo, "Cleaning up temporary directory: "+r.scratch)
	if err := os.RemoveAll(r.scratch); err != nil {
		r.log(LevelWarn, fmt.Sprintf("Warning: could not remove temporary directory: %v", err))
	}
	r.scratch = ""
}

func isGitRepo(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}
