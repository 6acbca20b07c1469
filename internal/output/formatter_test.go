package output

import (
	"reflect"
	"testing"
)

func TestNewPreviewReportWriter(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
		want   PreviewReportWriter
	}{
		{name: "Console", format: FormatConsole, want: &ConsolePreviewWriter{}},
		{name: "JSON", format: FormatJSON, want: &JSONPreviewWriter{}},
		{name: "CSV", format: FormatCSV, want: &CSVPreviewWriter{}},
		{name: "Markdown", format: FormatMarkdown, want: &MarkdownPreviewWriter{}},
		{name: "CI", format: FormatCI, want: &CIPreviewWriter{}},
		{name: "Unknown defaults to Console", format: "unknown", want: &ConsolePreviewWriter{}},
		{name: "Empty defaults to Console", format: "", want: &ConsolePreviewWriter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := NewPreviewReportWriter(tt.format)
			if writer == nil {
				t.Fatal("NewPreviewReportWriter returned nil")
			}
			if reflect.TypeOf(writer) != reflect.TypeOf(tt.want) {
				t.Errorf("NewPreviewReportWriter(%q) = %T, want %T", tt.format, writer, tt.want)
			}
		})
	}
}
