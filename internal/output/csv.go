package output

import (
	"encoding/csv"
	"fmt"
	"os"
)

// CSVPreviewWriter writes the touched files of a preview as CSV.
type CSVPreviewWriter struct{}

// Write outputs one row per touched file.
func (w *CSVPreviewWriter) Write(report *PreviewReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	headers := []string{"Path", "CommitCount", "MergeCount", "Contributors", "OwnershipRatio", "LastModified"}
	if err := writer.Write(headers); err != nil {
		return err
	}

	byPath := make(map[string]int, len(report.Activity))
	for i, m := range report.Activity {
		byPath[m.Path] = i
	}
	for _, path := range limitTop(report.Files, options.Top) {
		row := []string{path, "0", "0", "0", "", ""}
		if idx, ok := byPath[path]; ok {
			m := report.Activity[idx]
			row = []string{
				path,
				fmt.Sprintf("%d", m.CommitCount),
				fmt.Sprintf("%d", m.MergeCount),
				fmt.Sprintf("%d", m.ContributorCount()),
				fmt.Sprintf("%.6f", m.OwnershipRatio()),
				formatLastModified(m.LastModifiedAt),
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func createCSVWriter(outputPath string) (*csv.Writer, *os.File, error) {
	out, file, err := openOutputWriter(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return csv.NewWriter(out), file, nil
}
