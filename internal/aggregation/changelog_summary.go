package aggregation

import (
	"sort"

	"github.com/masmgr/gitarchive-go/internal/git"
)

// CommitEntry is one commit block of the changelog: the commit and the
// subset of its files that made it into the archive.
type CommitEntry struct {
	Commit   git.CommitRecord
	Archived []string
}

// ContributorCount is the number of commits by one author in the range.
type ContributorCount struct {
	Author  git.AuthorInfo
	Commits int
}

// ChangelogSummary is the data behind a changelog.
type ChangelogSummary struct {
	Entries       []CommitEntry
	ArchivedFiles []string // sorted
	Contributors  []ContributorCount

	TotalCommits     int
	UniqueFiles      int
	TotalFileChanges int
}

// Summarize intersects each commit's file list with the archived set.
// Commit order is preserved. TotalFileChanges is the sum of the per-commit
// archived counts; UniqueFiles is the size of the archived set.
func Summarize(commits []git.CommitRecord, archived []string) ChangelogSummary {
	set := make(map[string]struct{}, len(archived))
	files := make([]string, 0, len(archived))
	for _, p := range archived {
		if _, ok := set[p]; ok {
			continue
		}
		set[p] = struct{}{}
		files = append(files, p)
	}
	sort.Strings(files)

	s := ChangelogSummary{
		Entries:       make([]CommitEntry, 0, len(commits)),
		ArchivedFiles: files,
		TotalCommits:  len(commits),
		UniqueFiles:   len(files),
	}

	authors := make(map[string]*ContributorCount)
	var order []string
	for _, c := range commits {
		entry := CommitEntry{Commit: c, Archived: []string{}}
		seen := make(map[string]struct{}, len(c.Files))
		for _, p := range c.Files {
			if _, ok := set[p]; !ok {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			entry.Archived = append(entry.Archived, p)
		}
		s.TotalFileChanges += len(entry.Archived)
		s.Entries = append(s.Entries, entry)

		key := c.Author.ContributorKey()
		if cc, ok := authors[key]; ok {
			cc.Commits++
		} else {
			authors[key] = &ContributorCount{Author: c.Author, Commits: 1}
			order = append(order, key)
		}
	}

	s.Contributors = make([]ContributorCount, 0, len(order))
	for _, key := range order {
		s.Contributors = append(s.Contributors, *authors[key])
	}
	sort.SliceStable(s.Contributors, func(i, j int) bool {
		return s.Contributors[i].Commits > s.Contributors[j].Commits
	})
	return s
}

// HasMetadata reports whether per-commit blocks are available.
func (s ChangelogSummary) HasMetadata() bool {
	return len(s.Entries) > 0
}
