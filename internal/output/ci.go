package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// CIPreviewWriter writes preview reports as NDJSON (one JSON object per line)
// for CI pipelines.
type CIPreviewWriter struct{}

// CISummary is the first line of CI output.
type CISummary struct {
	Type       string `json:"type"`
	Mode       string `json:"mode"`
	CommitHash string `json:"commitHash"`
	TotalFiles int    `json:"totalFiles"`
	Commits    int    `json:"commits"`
	Merges     int    `json:"merges"`
}

// CIFileEntry represents a single touched file.
type CIFileEntry struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	CommitCount int    `json:"commitCount"`
}

// Write outputs the summary line followed by one line per file.
func (w *CIPreviewWriter) Write(report *PreviewReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	merges := 0
	for _, c := range report.Commits {
		if c.IsMerge {
			merges++
		}
	}

	summary := CISummary{
		Type:       "summary",
		Mode:       string(report.Mode),
		CommitHash: report.Reference,
		TotalFiles: len(report.Files),
		Commits:    len(report.Commits),
		Merges:     merges,
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	counts := make(map[string]int, len(report.Activity))
	for _, m := range report.Activity {
		counts[m.Path] = m.CommitCount
	}
	for _, path := range limitTop(report.Files, options.Top) {
		entry := CIFileEntry{Type: "file", Path: path, CommitCount: counts[path]}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}
	return nil
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode NDJSON line: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
