package git

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// BlobSource fetches the raw content of a path at a revision.
type BlobSource interface {
	Blob(ctx context.Context, rev, path string) ([]byte, error)
}

// Backend selects how blob contents are read.
type Backend string

const (
	// BackendCLI shells out to `git cat-file blob`.
	BackendCLI Backend = "git"
	// BackendGoGit reads objects in-process with go-git.
	BackendGoGit Backend = "go-git"
)

// ParseBackend parses a backend name; "" selects the git CLI.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "git", "cli":
		return BackendCLI, nil
	case "go-git", "gogit":
		return BackendGoGit, nil
	default:
		return "", fmt.Errorf("unknown git backend %q (expected git or go-git)", s)
	}
}

// NewBlobSource returns the blob source for a backend.
func NewBlobSource(backend Backend, runner *Runner) BlobSource {
	if backend == BackendGoGit {
		return NewGoGitBlobSource(runner.RepoPath)
	}
	return runner
}

// GoGitBlobSource reads blobs through go-git. The repository is opened on
// first use and resolved commits are cached.
type GoGitBlobSource struct {
	repoPath string

	once    sync.Once
	repo    *gogit.Repository
	openErr error

	mu      sync.Mutex
	commits map[string]*object.Commit
}

// NewGoGitBlobSource creates a go-git backed blob source.
func NewGoGitBlobSource(repoPath string) *GoGitBlobSource {
	return &GoGitBlobSource{
		repoPath: repoPath,
		commits:  make(map[string]*object.Commit),
	}
}

func (s *GoGitBlobSource) open() (*gogit.Repository, error) {
	s.once.Do(func() {
		s.repo, s.openErr = gogit.PlainOpen(s.repoPath)
	})
	return s.repo, s.openErr
}

func (s *GoGitBlobSource) commit(rev string) (*object.Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.commits[rev]; ok {
		return c, nil
	}

	repo, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rev, err)
	}
	c, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", rev, err)
	}
	s.commits[rev] = c
	return c, nil
}

// Blob returns the content of path at rev. Paths that are absent, or are
// not file entries (directories, submodules), yield ErrBlobNotFound.
func (s *GoGitBlobSource) Blob(ctx context.Context, rev, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := s.commit(rev)
	if err != nil {
		return nil, fmt.Errorf("%w: %s at %s: %v", ErrBlobNotFound, path, ShortSHA(rev, 10), err)
	}

	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree of %s: %w", ShortSHA(rev, 10), err)
	}

	entry, err := tree.FindEntry(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s at %s", ErrBlobNotFound, path, ShortSHA(rev, 10))
	}
	if !entry.Mode.IsFile() {
		return nil, fmt.Errorf("%w: %s at %s is not a file (mode %s)", ErrBlobNotFound, path, ShortSHA(rev, 10), entry.Mode)
	}

	file, err := tree.TreeEntryFile(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %s at %s: %v", ErrBlobNotFound, path, ShortSHA(rev, 10), err)
	}

	r, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", path, err)
	}
	return data, nil
}
