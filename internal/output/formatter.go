package output

import (
	"time"

	"github.com/masmgr/gitarchive-go/internal/aggregation"
	"github.com/masmgr/gitarchive-go/internal/git"
)

// Compile-time interface conformance checks.
var (
	_ PreviewReportWriter = (*ConsolePreviewWriter)(nil)
	_ PreviewReportWriter = (*JSONPreviewWriter)(nil)
	_ PreviewReportWriter = (*CSVPreviewWriter)(nil)
	_ PreviewReportWriter = (*MarkdownPreviewWriter)(nil)
	_ PreviewReportWriter = (*CIPreviewWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	Top        int
	OutputPath string
}

// PreviewReport is what an archive run would contain, without staging.
type PreviewReport struct {
	RepoPath    string
	Mode        git.Mode
	Range       string
	Reference   string
	GeneratedAt time.Time

	Files        []string
	Commits      []git.CommitRecord
	Activity     []*aggregation.FileMetrics
	Contributors []aggregation.ContributorCount
}

// NewPreviewReport assembles a report from a resolution and its commits.
func NewPreviewReport(repoPath string, spec git.RangeSpec, res *git.Resolution, commits []git.CommitRecord) *PreviewReport {
	r := &PreviewReport{
		RepoPath:    repoPath,
		Mode:        spec.Mode(),
		Range:       spec.Description(),
		GeneratedAt: time.Now(),
		Files:       []string{},
		Commits:     commits,
	}
	if res != nil {
		r.Reference = res.Reference
		if res.Paths != nil {
			r.Files = res.Paths
		}
	}
	metrics := aggregation.NewFileMetricsAggregator(r.Files).Process(commits)
	r.Activity = aggregation.SortedByActivity(metrics)
	r.Contributors = aggregation.Summarize(commits, r.Files).Contributors
	return r
}

// PreviewReportWriter writes preview reports.
type PreviewReportWriter interface {
	Write(report *PreviewReport, options OutputOptions) error
}

// NewPreviewReportWriter creates a report writer for the specified format.
func NewPreviewReportWriter(format OutputFormat) PreviewReportWriter {
	switch format {
	case FormatJSON:
		return &JSONPreviewWriter{}
	case FormatCSV:
		return &CSVPreviewWriter{}
	case FormatMarkdown:
		return &MarkdownPreviewWriter{}
	case FormatCI:
		return &CIPreviewWriter{}
	default:
		return &ConsolePreviewWriter{}
	}
}
