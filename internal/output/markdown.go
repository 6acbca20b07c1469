package output

import (
	"fmt"
)

// MarkdownPreviewWriter writes preview reports as Markdown.
type MarkdownPreviewWriter struct{}

// Write outputs the preview report as Markdown.
func (w *MarkdownPreviewWriter) Write(report *PreviewReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Archive Preview")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Range:** %s\n\n", escapeMarkdown(report.Range))
	if report.Reference != "" {
		fmt.Fprintf(out, "**Reference Commit:** `%s`\n\n", report.Reference)
	}
	fmt.Fprintf(out, "**Files to Archive:** %d\n\n", len(report.Files))

	fmt.Fprintln(out, "## Files")
	fmt.Fprintln(out)
	if len(report.Files) == 0 {
		fmt.Fprintln(out, "_No files changed in the specified range or commit._")
		return nil
	}
	fmt.Fprintln(out, "| # | Path | Commits | Contributors | Ownership |")
	fmt.Fprintln(out, "|---|------|---------|--------------|-----------|")
	byPath := make(map[string]int, len(report.Activity))
	for i, m := range report.Activity {
		byPath[m.Path] = i
	}
	for i, path := range limitTop(report.Files, options.Top) {
		commits, contributors, ownership := 0, 0, 0.0
		if idx, ok := byPath[path]; ok {
			m := report.Activity[idx]
			commits, contributors, ownership = m.CommitCount, m.ContributorCount(), m.OwnershipRatio()
		}
		fmt.Fprintf(out, "| %d | `%s` | %d | %d | %.2f |\n", i+1, path, commits, contributors, ownership)
	}

	if len(report.Commits) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "## Commits")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "| SHA | Date | Author | Files | Message |")
		fmt.Fprintln(out, "|-----|------|--------|-------|---------|")
		for _, c := range limitTop(report.Commits, options.Top) {
			sha := "`" + c.ShortHash(10) + "`"
			if c.IsMerge {
				sha += " (merge)"
			}
			fmt.Fprintf(out, "| %s | %s | %s | %d | %s |\n",
				sha, c.Date, escapeMarkdown(c.Author.Name), len(c.Files), escapeMarkdown(truncateMessage(c.Message, 60)))
		}
	}

	return nil
}
