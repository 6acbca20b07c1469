package aggregation

import (
	"sort"
	"time"

	"github.com/masmgr/gitarchive-go/internal/git"
)

// FileMetrics holds per-file activity within a range.
type FileMetrics struct {
	Path                    string
	CommitCount             int
	MergeCount              int
	LastModifiedAt          time.Time
	Contributors            map[string]struct{}
	ContributorCommitCounts map[string]int
}

// NewFileMetrics creates a new FileMetrics instance.
func NewFileMetrics(path string) *FileMetrics {
	return &FileMetrics{
		Path:                    path,
		Contributors:            make(map[string]struct{}),
		ContributorCommitCounts: make(map[string]int),
	}
}

// ContributorCount returns number of unique contributors.
func (f *FileMetrics) ContributorCount() int {
	return len(f.Contributors)
}

// OwnershipRatio returns proportion of commits by top contributor.
// A high ratio means one person did most of the work on the file.
func (f *FileMetrics) OwnershipRatio() float64 {
	if f.CommitCount == 0 || len(f.ContributorCommitCounts) == 0 {
		return 1.0
	}

	maxCommits := 0
	for _, count := range f.ContributorCommitCounts {
		if count > maxCommits {
			maxCommits = count
		}
	}

	return float64(maxCommits) / float64(f.CommitCount)
}

// AddCommit adds one commit touching this file.
func (f *FileMetrics) AddCommit(commit git.CommitRecord) {
	f.CommitCount++
	if commit.IsMerge {
		f.MergeCount++
	}

	if when := commit.When(); !when.IsZero() && when.After(f.LastModifiedAt) {
		f.LastModifiedAt = when
	}

	key := commit.Author.ContributorKey()
	f.Contributors[key] = struct{}{}
	f.ContributorCommitCounts[key]++
}

// FileMetricsAggregator aggregates per-file activity from commit records.
type FileMetricsAggregator struct {
	metrics map[string]*FileMetrics
	only    map[string]struct{}
}

// NewFileMetricsAggregator creates a new aggregator. When only is non-empty,
// files outside it are ignored.
func NewFileMetricsAggregator(only []string) *FileMetricsAggregator {
	a := &FileMetricsAggregator{metrics: make(map[string]*FileMetrics)}
	if len(only) > 0 {
		a.only = make(map[string]struct{}, len(only))
		for _, p := range only {
			a.only[p] = struct{}{}
		}
	}
	return a
}

// Process aggregates all commits and returns the metrics keyed by path.
func (a *FileMetricsAggregator) Process(commits []git.CommitRecord) map[string]*FileMetrics {
	for _, c := range commits {
		seen := make(map[string]struct{}, len(c.Files))
		for _, path := range c.Files {
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			if a.only != nil {
				if _, ok := a.only[path]; !ok {
					continue
				}
			}
			m, ok := a.metrics[path]
			if !ok {
				m = NewFileMetrics(path)
				a.metrics[path] = m
			}
			m.AddCommit(c)
		}
	}
	return a.metrics
}

// GetMetrics returns the aggregated metrics.
func (a *FileMetricsAggregator) GetMetrics() map[string]*FileMetrics {
	return a.metrics
}

// SortedByActivity returns metrics ordered by commit count descending, then
// path ascending.
func SortedByActivity(metrics map[string]*FileMetrics) []*FileMetrics {
	out := make([]*FileMetrics, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CommitCount != out[j].CommitCount {
			return out[i].CommitCount > out[j].CommitCount
		}
		return out[i].Path < out[j].Path
	})
	return out
}
