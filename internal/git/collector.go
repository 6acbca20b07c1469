package git

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// Each commit header is prefixed by 0x1e (record separator) with NUL-separated
// fields, so subjects containing tabs or newlines cannot break parsing.
const commitLogFormat = "%x1e%H%x00%an%x00%ae%x00%aI%x00%s"

// Collector gathers per-commit metadata for a range: author, date, subject,
// changed files and merge status.
type Collector struct {
	runner *Runner

	// OnWarning, if set, receives non-fatal problems such as a commit whose
	// file list could not be determined.
	OnWarning func(msg string)
}

// NewCollector creates a metadata collector.
func NewCollector(runner *Runner) *Collector {
	return &Collector{runner: runner}
}

// Collect returns the commits of the range in git log order (newest first).
func (c *Collector) Collect(ctx context.Context, spec RangeSpec) ([]CommitRecord, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	args := []string{"log", "--no-color", "--pretty=format:" + commitLogFormat}
	switch spec.Mode() {
	case ModeDateRange:
		d := spec.Date
		if _, _, err := d.Window(); err != nil {
			return nil, err
		}
		args = append(args, "--since="+d.sinceArg(), "--until="+d.untilArg(), d.Branch)
	case ModeShaRange:
		args = append(args, spec.Shas.Start+".."+spec.Shas.End)
	default:
		args = append(args, "-1", spec.Commit.SHA)
	}

	res := c.runner.Run(ctx, args...)
	if !res.OK() {
		return nil, fmt.Errorf("git log failed: %w", res.Err)
	}

	commits, err := parseCommitLog(res.Stdout)
	if err != nil {
		return nil, err
	}

	for i := range commits {
		c.enrich(ctx, &commits[i])
	}
	return commits, nil
}

func (c *Collector) enrich(ctx context.Context, rec *CommitRecord) {
	raw := c.runner.Run(ctx, "cat-file", "-p", rec.Hash)
	if raw.OK() {
		rec.IsMerge = ParentCount(raw.Text()) > 1
	} else {
		c.warn("Warning: could not read commit object %s: %v", ShortSHA(rec.Hash, 10), raw.Err)
	}

	if rec.IsMerge {
		rec.Files = c.mergeFiles(ctx, rec.Hash)
	} else {
		rec.Files = c.queryFiles(ctx, rec.Hash,
			"diff-tree", "--root", "--no-commit-id", "--name-only", "-r", rec.Hash)
	}

	if len(rec.Files) == 0 {
		c.warn("Warning: no file changes found for commit %s", ShortSHA(rec.Hash, 10))
	}
}

// mergeFiles prefers the combined diff and falls back to the flattened
// per-parent listing, which is non-empty for clean merges.
func (c *Collector) mergeFiles(ctx context.Context, hash string) []string {
	combined := c.queryFiles(ctx, hash, "show", "--cc", "--name-only", "--pretty=format:", hash)
	if len(combined) > 0 {
		return combined
	}
	return c.queryFiles(ctx, hash, "diff-tree", "--no-commit-id", "--name-only", "-r", "-m", hash)
}

func (c *Collector) queryFiles(ctx context.Context, hash string, args ...string) []string {
	res := c.runner.Run(ctx, args...)
	if !res.OK() {
		c.warn("Warning: could not list files of commit %s: %v", ShortSHA(hash, 10), res.Err)
		return []string{}
	}
	return uniqueOrdered(res.Lines())
}

func (c *Collector) warn(format string, args ...any) {
	if c.OnWarning != nil {
		c.OnWarning(fmt.Sprintf(format, args...))
	}
}

// ParentCount counts the parent lines in the header of a raw commit object.
func ParentCount(rawCommit string) int {
	n := 0
	for _, line := range strings.Split(rawCommit, "\n") {
		if line == "" {
			// End of header; the message follows.
			break
		}
		if strings.HasPrefix(line, "parent ") {
			n++
		}
	}
	return n
}

func parseCommitLog(out []byte) ([]CommitRecord, error) {
	records := bytes.Split(out, []byte{0x1e})
	commits := make([]CommitRecord, 0, len(records))

	for _, rec := range records {
		rec = bytes.TrimRight(rec, "\r\n")
		if len(bytes.TrimSpace(rec)) == 0 {
			continue
		}

		fields := bytes.SplitN(rec, []byte{0x00}, 5)
		if len(fields) < 5 {
			return nil, fmt.Errorf("unexpected git log record format: %q", string(rec))
		}

		commits = append(commits, CommitRecord{
			Hash: strings.TrimSpace(string(fields[0])),
			Author: AuthorInfo{
				Name:  lenient(fields[1]),
				Email: lenient(fields[2]),
			},
			Date:    strings.TrimSpace(string(fields[3])),
			Message: lenient(fields[4]),
			Files:   []string{},
		})
	}

	return commits, nil
}

func lenient(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
