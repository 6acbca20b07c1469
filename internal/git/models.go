package git

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidRangeSpec is returned when a range specification has zero or
	// several modes populated, or a mode is missing a required parameter.
	ErrInvalidRangeSpec = errors.New("invalid range specification")

	// ErrInvalidDate is returned when a date bound is not YYYY-MM-DD or the
	// window is reversed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrNoCommitInRange is returned when no commit exists on the branch at or
	// before the end of the date window.
	ErrNoCommitInRange = errors.New("no commit in range")

	// ErrFileListFailed is returned when the touched-file query itself could
	// not run, as opposed to running and matching nothing.
	ErrFileListFailed = errors.New("failed to list changed files")

	// ErrQueryFailed marks a git command that exited non-zero or could not start.
	ErrQueryFailed = errors.New("git query failed")

	// ErrBlobNotFound is returned when a path has no file content at a commit.
	ErrBlobNotFound = errors.New("blob not found")
)

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// ContributorKey returns a normalized identifier for grouping contributors.
func (a AuthorInfo) ContributorKey() string {
	return strings.ToLower(a.Email)
}

// String renders the author as "name <email>".
func (a AuthorInfo) String() string {
	return a.Name + " <" + a.Email + ">"
}

// CommitRecord is the changelog view of a single commit in a range.
type CommitRecord struct {
	Hash    string
	Author  AuthorInfo
	Date    string // ISO-8601 with zone, as printed by git (%aI)
	Message string
	Files   []string
	IsMerge bool
}

// ShortHash returns the first n characters of the hash.
func (c CommitRecord) ShortHash(n int) string {
	return ShortSHA(c.Hash, n)
}

// When parses Date. A zero time is returned if git printed something unexpected.
func (c CommitRecord) When() time.Time {
	t, err := time.Parse(time.RFC3339, c.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Resolution is the output of the range resolver.
type Resolution struct {
	// Reference is the commit whose tree supplies file contents.
	Reference string
	// Paths is the deduplicated, sorted touched path set.
	Paths []string
}

// Empty reports whether the range touched no files.
func (r *Resolution) Empty() bool {
	return r == nil || len(r.Paths) == 0
}

// ShortSHA truncates a commit id for display.
func ShortSHA(sha string, n int) string {
	if n <= 0 || len(sha) <= n {
		return sha
	}
	return sha[:n]
}
