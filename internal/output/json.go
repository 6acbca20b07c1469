package output

import (
	"encoding/json"
	"fmt"
	"time"
)

// JSONPreviewWriter writes preview reports as JSON.
type JSONPreviewWriter struct{}

// JSONPreviewReport is the JSON output structure for a preview.
type JSONPreviewReport struct {
	RepoPath     string            `json:"repo"`
	Mode         string            `json:"mode"`
	Range        string            `json:"range"`
	CommitHash   string            `json:"commitHash"`
	GeneratedAt  string            `json:"generatedAt"`
	TotalFiles   int               `json:"totalFiles"`
	Files        []string          `json:"files"`
	Commits      []JSONCommit      `json:"commits"`
	Activity     []JSONFileItem    `json:"activity"`
	Contributors []JSONContributor `json:"contributors"`
}

// JSONCommit is one commit of the range.
type JSONCommit struct {
	Hash    string   `json:"hash"`
	Author  string   `json:"author"`
	Email   string   `json:"email"`
	Date    string   `json:"date"`
	Message string   `json:"message"`
	IsMerge bool     `json:"isMerge"`
	Files   []string `json:"files"`
}

// JSONFileItem holds the activity of one touched file.
type JSONFileItem struct {
	Path           string  `json:"path"`
	CommitCount    int     `json:"commitCount"`
	MergeCount     int     `json:"mergeCount"`
	Contributors   int     `json:"contributors"`
	OwnershipRatio float64 `json:"ownershipRatio"`
	LastModified   string  `json:"lastModified,omitempty"`
}

// JSONContributor is an author and their commit count.
type JSONContributor struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Commits int    `json:"commits"`
}

// Write outputs the preview report as JSON.
func (w *JSONPreviewWriter) Write(report *PreviewReport, options OutputOptions) error {
	commits := limitTop(report.Commits, options.Top)
	jsonCommits := make([]JSONCommit, len(commits))
	for i, c := range commits {
		jsonCommits[i] = JSONCommit{
			Hash:    c.Hash,
			Author:  c.Author.Name,
			Email:   c.Author.Email,
			Date:    c.Date,
			Message: c.Message,
			IsMerge: c.IsMerge,
			Files:   c.Files,
		}
	}

	activity := limitTop(report.Activity, options.Top)
	items := make([]JSONFileItem, len(activity))
	for i, m := range activity {
		items[i] = JSONFileItem{
			Path:           m.Path,
			CommitCount:    m.CommitCount,
			MergeCount:     m.MergeCount,
			Contributors:   m.ContributorCount(),
			OwnershipRatio: m.OwnershipRatio(),
		}
		if !m.LastModifiedAt.IsZero() {
			items[i].LastModified = m.LastModifiedAt.Format(time.RFC3339)
		}
	}

	contributors := make([]JSONContributor, len(report.Contributors))
	for i, cc := range report.Contributors {
		contributors[i] = JSONContributor{Name: cc.Author.Name, Email: cc.Author.Email, Commits: cc.Commits}
	}

	files := report.Files
	if files == nil {
		files = []string{}
	}

	jsonReport := JSONPreviewReport{
		RepoPath:     report.RepoPath,
		Mode:         string(report.Mode),
		Range:        report.Range,
		CommitHash:   report.Reference,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		TotalFiles:   len(files),
		Files:        files,
		Commits:      jsonCommits,
		Activity:     items,
		Contributors: contributors,
	}

	return writeJSON(jsonReport, options.OutputPath)
}

func writeJSON(data interface{}, outputPath string) error {
	out, file, err := openOutputWriter(outputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
