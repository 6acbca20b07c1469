package output

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
)

// ConsolePreviewWriter writes preview reports to the console.
type ConsolePreviewWriter struct{}

// Write outputs the preview report as aligned tables.
func (w *ConsolePreviewWriter) Write(report *PreviewReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	heading := color.New(color.FgGreen)
	heading.Fprintln(out, "Archive Preview")
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "Range: %s\n", report.Range)
	if report.Reference != "" {
		fmt.Fprintf(out, "Reference commit: %s\n", report.Reference)
	}
	fmt.Fprintf(out, "Files to archive: %d, Commits: %d\n\n", len(report.Files), len(report.Commits))

	if len(report.Files) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No files changed in the specified range or commit.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPath\tCommits\tContributors\tLast Modified")
	byPath := make(map[string]int, len(report.Activity))
	for i, m := range report.Activity {
		byPath[m.Path] = i
	}
	for i, path := range limitTop(report.Files, options.Top) {
		commits, contributors, last := 0, 0, ""
		if idx, ok := byPath[path]; ok {
			m := report.Activity[idx]
			commits, contributors, last = m.CommitCount, m.ContributorCount(), formatLastModified(m.LastModifiedAt)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", i+1, path, commits, contributors, last)
	}
	tw.Flush()

	if len(report.Commits) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	heading.Fprintln(out, "Commits")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SHA\tDate\tAuthor\tFiles\tMessage")
	for _, c := range limitTop(report.Commits, options.Top) {
		sha := c.ShortHash(10)
		if c.IsMerge {
			sha += " " + color.CyanString("[MERGE]")
		}
		date := c.Date
		if when := c.When(); !when.IsZero() {
			date = when.Format(reportDateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", sha, date, c.Author.Name, len(c.Files), truncateMessage(c.Message, 50))
	}
	tw.Flush()

	if len(report.Contributors) > 0 {
		fmt.Fprintln(out)
		heading.Fprintln(out, "Contributors")
		for _, cc := range report.Contributors {
			fmt.Fprintf(out, "  %s: %d\n", cc.Author, cc.Commits)
		}
	}
	return nil
}
