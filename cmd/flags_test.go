package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitarchive-go/internal/git"
	"github.com/masmgr/gitarchive-go/internal/output"
)

func TestParseDateFlag(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		got, err := parseDateFlag("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})

	t.Run("ValidDate", func(t *testing.T) {
		got, err := parseDateFlag("2025-12-31")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("parseDateFlag(valid) = %v, want %v", got, want)
		}
	})

	t.Run("InvalidDate", func(t *testing.T) {
		if _, err := parseDateFlag("31-12-2025"); err == nil {
			t.Fatalf("expected error, got nil")
		}
	})
}

func TestBuildRangeSpec(t *testing.T) {
	tests := []struct {
		name     string
		in       rangeInput
		wantMode git.Mode
		wantErr  error
	}{
		{name: "Dates with default branch", in: rangeInput{Since: "2024-01-01", Until: "2024-01-31"}, wantMode: git.ModeDateRange},
		{name: "Dates with branch", in: rangeInput{Since: "2024-01-01", Until: "2024-01-31", Branch: "develop"}, wantMode: git.ModeDateRange},
		{name: "SHA range", in: rangeInput{StartSHA: "abc", EndSHA: "def"}, wantMode: git.ModeShaRange},
		{name: "Single commit", in: rangeInput{Commit: "abc"}, wantMode: git.ModeSingleCommit},
		{name: "Nothing selected", in: rangeInput{}, wantErr: git.ErrInvalidRangeSpec},
		{name: "Dates and commit", in: rangeInput{Since: "2024-01-01", Until: "2024-01-31", Commit: "abc"}, wantErr: git.ErrInvalidRangeSpec},
		{name: "SHA range and commit", in: rangeInput{StartSHA: "a", EndSHA: "b", Commit: "c"}, wantErr: git.ErrInvalidRangeSpec},
		{name: "Only since", in: rangeInput{Since: "2024-01-01"}, wantErr: git.ErrInvalidRangeSpec},
		{name: "Only end SHA", in: rangeInput{EndSHA: "def"}, wantErr: git.ErrInvalidRangeSpec},
		{name: "Reversed dates", in: rangeInput{Since: "2024-02-01", Until: "2024-01-01"}, wantErr: git.ErrInvalidDate},
		{name: "Option-like commit", in: rangeInput{Commit: "--all"}, wantErr: git.ErrInvalidRangeSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := buildRangeSpec(tt.in, "main")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if spec.Mode() != tt.wantMode {
				t.Fatalf("Mode() = %q, want %q", spec.Mode(), tt.wantMode)
			}
		})
	}
}

func TestBuildRangeSpec_BranchFallback(t *testing.T) {
	spec, err := buildRangeSpec(rangeInput{Since: "2024-01-01", Until: "2024-01-31"}, "trunk")
	if err != nil {
		t.Fatal(err)
	}
	if spec.Date.Branch != "trunk" {
		t.Errorf("Branch = %q, want trunk", spec.Date.Branch)
	}
}

func TestBuildRangeSpec_InvalidDate(t *testing.T) {
	if _, err := buildRangeSpec(rangeInput{Since: "2024-13-01", Until: "2024-01-31"}, "main"); err == nil {
		t.Fatal("expected error for invalid month")
	}
}

func TestGetOutputFormat(t *testing.T) {
	tests := []struct {
		input string
		want  output.OutputFormat
	}{
		{input: "json", want: output.FormatJSON},
		{input: "csv", want: output.FormatCSV},
		{input: "markdown", want: output.FormatMarkdown},
		{input: "md", want: output.FormatMarkdown},
		{input: "ci", want: output.FormatCI},
		{input: "ndjson", want: output.FormatCI},
		{input: "unknown", want: output.FormatConsole},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := getOutputFormat(tt.input); got != tt.want {
				t.Fatalf("getOutputFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(cli.Exit("cancelled", exitCancelled)); got != 130 {
		t.Errorf("exitCode(cancel) = %d, want 130", got)
	}
	if got := exitCode(errors.New("boom")); got != exitFailed {
		t.Errorf("exitCode(plain) = %d, want %d", got, exitFailed)
	}
}

func TestProgressSuffix(t *testing.T) {
	if got := progressSuffix(42, "Staging files (1/2)"); got != " [ 42%] Staging files (1/2)" {
		t.Errorf("progressSuffix = %q", got)
	}
	if got := progressSuffix(100, "Completed"); got != " [100%] Completed" {
		t.Errorf("progressSuffix = %q", got)
	}
}
