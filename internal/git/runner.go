package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Runner issues read-only git queries rooted at a repository directory.
type Runner struct {
	RepoPath string
	Binary   string // defaults to "git"
}

// NewRunner creates a runner for the repository at repoPath.
func NewRunner(repoPath, binary string) *Runner {
	return &Runner{RepoPath: repoPath, Binary: binary}
}

// Result is the outcome of one git query. A command that ran and printed
// nothing is OK with empty output; a command that failed carries Err.
type Result struct {
	Args     []string
	Stdout   []byte
	ExitCode int
	Err      error
}

// OK reports whether the command ran and exited zero.
func (r Result) OK() bool {
	return r.Err == nil
}

// Text returns stdout decoded leniently, with surrounding whitespace removed.
// Invalid UTF-8 sequences are replaced rather than rejected.
func (r Result) Text() string {
	return strings.TrimSpace(strings.ToValidUTF8(string(r.Stdout), "�"))
}

// Lines returns the non-blank lines of stdout. Quoted paths are unquoted.
func (r Result) Lines() []string {
	return splitPathLines(strings.ToValidUTF8(string(r.Stdout), "�"))
}

func (r *Runner) binary() string {
	if r.Binary == "" {
		return "git"
	}
	return r.Binary
}

func (r *Runner) command(ctx context.Context, args []string) *exec.Cmd {
	// core.quotePath=false keeps non-ASCII paths literal in name-only output.
	full := append([]string{"-c", "core.quotePath=false"}, args...)
	cmd := exec.CommandContext(ctx, r.binary(), full...)
	cmd.Dir = r.RepoPath
	hideWindow(cmd)
	return cmd
}

// Run executes git with args and captures stdout. It never returns a Go error
// for ordinary command failure: the failure is carried in the Result.
func (r *Runner) Run(ctx context.Context, args ...string) Result {
	cmd := r.command(ctx, args)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := Result{Args: args}
	err := cmd.Run()
	res.Stdout = stdout.Bytes()
	if err != nil {
		res.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
		res.Err = fmt.Errorf("%w: git %s: %v: %s", ErrQueryFailed,
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return res
}

// Blob returns the raw bytes of path in the tree of rev.
func (r *Runner) Blob(ctx context.Context, rev, path string) ([]byte, error) {
	res := r.Run(ctx, "cat-file", "blob", rev+":"+path)
	if !res.OK() {
		return nil, fmt.Errorf("%w: %s at %s: %v", ErrBlobNotFound, path, ShortSHA(rev, 10), res.Err)
	}
	return res.Stdout, nil
}

// CommitTime returns the committer date of rev.
func (r *Runner) CommitTime(ctx context.Context, rev string) (time.Time, error) {
	res := r.Run(ctx, "show", "-s", "--format=%cI", rev)
	if !res.OK() {
		return time.Time{}, res.Err
	}
	t, err := time.Parse(time.RFC3339, res.Text())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse committer date: %w", err)
	}
	return t, nil
}

func splitPathLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, unquotePath(line))
	}
	return lines
}

// unquotePath undoes git's C-style quoting of unusual path names.
func unquotePath(p string) string {
	if len(p) < 2 || p[0] != '"' || p[len(p)-1] != '"' {
		return p
	}
	s, err := strconv.Unquote(p)
	if err != nil {
		return p
	}
	return s
}
