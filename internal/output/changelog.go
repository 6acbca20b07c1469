package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/masmgr/gitarchive-go/internal/aggregation"
)

const (
	changelogRule   = "========================================"
	changelogDashes = "----------------------------------------"
	flatListRule    = "------------------------------"
	changelogIndent = "    "

	noArchivedFiles  = "(no files from this commit were archived)"
	noReportedChange = "(no file changes reported for this commit)"
)

// Changelog is the input of a changelog file.
type Changelog struct {
	// ArchiveName is the container file name, e.g. "release.zip".
	ArchiveName string
	RepoPath    string
	RangeLines  []string
	Summary     aggregation.ChangelogSummary
}

// WriteChangelog renders cl to w. Without commit metadata it falls back to a
// flat sorted list of the archived files.
func WriteChangelog(w io.Writer, cl Changelog) error {
	bw := bufio.NewWriter(w)
	s := cl.Summary

	fmt.Fprintf(bw, "Changelog for %s\n", cl.ArchiveName)
	fmt.Fprintln(bw, changelogRule)
	fmt.Fprintf(bw, "Repository: %s\n", cl.RepoPath)
	for _, line := range cl.RangeLines {
		fmt.Fprintln(bw, line)
	}
	fmt.Fprintf(bw, "Total Archived Files: %d\n", s.UniqueFiles)
	fmt.Fprintln(bw, changelogRule)
	fmt.Fprintln(bw)

	if !s.HasMetadata() {
		fmt.Fprintf(bw, "Archived Files (%d):\n", len(s.ArchivedFiles))
		fmt.Fprintln(bw, flatListRule)
		for _, p := range s.ArchivedFiles {
			fmt.Fprintln(bw, p)
		}
		return bw.Flush()
	}

	for _, e := range s.Entries {
		c := e.Commit
		header := "Commit: " + c.ShortHash(10)
		if c.IsMerge {
			header += " [MERGE]"
		}
		fmt.Fprintln(bw, header)
		fmt.Fprintf(bw, "Author: %s\n", c.Author)
		fmt.Fprintf(bw, "Date:   %s\n", c.Date)
		fmt.Fprintf(bw, "Message: %s\n", strings.TrimSpace(c.Message))
		fmt.Fprintf(bw, "Files (%d):\n", len(e.Archived))
		switch {
		case len(c.Files) == 0:
			fmt.Fprintln(bw, changelogIndent+noReportedChange)
		case len(e.Archived) == 0:
			fmt.Fprintln(bw, changelogIndent+noArchivedFiles)
		default:
			for _, p := range e.Archived {
				fmt.Fprintln(bw, changelogIndent+p)
			}
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, changelogDashes)
	fmt.Fprintln(bw, "Summary")
	fmt.Fprintln(bw, changelogDashes)
	fmt.Fprintf(bw, "Total Commits: %d\n", s.TotalCommits)
	fmt.Fprintf(bw, "Total Unique Files Archived: %d\n", s.UniqueFiles)
	fmt.Fprintf(bw, "Total File Changes Across All Commits: %d\n", s.TotalFileChanges)

	return bw.Flush()
}

// WriteChangelogFile writes the changelog to path as UTF-8. A partially
// written file is removed on failure.
func WriteChangelogFile(path string, cl Changelog) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create changelog: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close changelog: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := WriteChangelog(f, cl); err != nil {
		return fmt.Errorf("write changelog: %w", err)
	}
	return nil
}
