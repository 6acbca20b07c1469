package git

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted for date windows.
const DateLayout = "2006-01-02"

// Mode names the populated variant of a RangeSpec. The values are the ones
// persisted in run history.
type Mode string

const (
	ModeDateRange    Mode = "date"
	ModeShaRange     Mode = "sha_range"
	ModeSingleCommit Mode = "commit_sha"
)

// DateRange selects commits on Branch from Start 00:00:00 through End 23:59:59,
// local time.
type DateRange struct {
	Branch string
	Start  string
	End    string
}

// ShaRange selects Start..End with two-dot ancestry semantics.
type ShaRange struct {
	Start string
	End   string
}

// SingleCommit selects exactly one commit.
type SingleCommit struct {
	SHA string
}

// RangeSpec is a tagged union: exactly one field must be set.
type RangeSpec struct {
	Date   *DateRange
	Shas   *ShaRange
	Commit *SingleCommit
}

// NewDateRange builds a date-window spec.
func NewDateRange(branch, start, end string) RangeSpec {
	return RangeSpec{Date: &DateRange{Branch: branch, Start: start, End: end}}
}

// NewShaRange builds a start..end spec.
func NewShaRange(start, end string) RangeSpec {
	return RangeSpec{Shas: &ShaRange{Start: start, End: end}}
}

// NewSingleCommit builds a single-commit spec.
func NewSingleCommit(sha string) RangeSpec {
	return RangeSpec{Commit: &SingleCommit{SHA: sha}}
}

// Mode returns the populated variant, or "" when the spec is not valid.
func (s RangeSpec) Mode() Mode {
	if s.populated() != 1 {
		return ""
	}
	switch {
	case s.Date != nil:
		return ModeDateRange
	case s.Shas != nil:
		return ModeShaRange
	default:
		return ModeSingleCommit
	}
}

func (s RangeSpec) populated() int {
	n := 0
	if s.Date != nil {
		n++
	}
	if s.Shas != nil {
		n++
	}
	if s.Commit != nil {
		n++
	}
	return n
}

// Validate checks the structural invariants of the union. Date values are
// parsed later by the resolver.
func (s RangeSpec) Validate() error {
	switch s.populated() {
	case 0:
		return fmt.Errorf("%w: no range selected (date range, SHA range or single commit)", ErrInvalidRangeSpec)
	case 1:
	default:
		return fmt.Errorf("%w: only one of date range, SHA range or single commit may be used", ErrInvalidRangeSpec)
	}

	switch {
	case s.Date != nil:
		if s.Date.Start == "" || s.Date.End == "" || s.Date.Branch == "" {
			return fmt.Errorf("%w: date range requires start date, end date and branch", ErrInvalidRangeSpec)
		}
		return checkRevArg("branch", s.Date.Branch)
	case s.Shas != nil:
		if s.Shas.Start == "" || s.Shas.End == "" {
			return fmt.Errorf("%w: SHA range requires both start and end SHA", ErrInvalidRangeSpec)
		}
		if err := checkRevArg("start SHA", s.Shas.Start); err != nil {
			return err
		}
		return checkRevArg("end SHA", s.Shas.End)
	default:
		if s.Commit.SHA == "" {
			return fmt.Errorf("%w: single commit mode requires a commit SHA", ErrInvalidRangeSpec)
		}
		return checkRevArg("commit SHA", s.Commit.SHA)
	}
}

// checkRevArg rejects revisions git would parse as an option.
func checkRevArg(name, rev string) error {
	if strings.HasPrefix(rev, "-") {
		return fmt.Errorf("%w: %s %q must not start with '-'", ErrInvalidRangeSpec, name, rev)
	}
	if strings.ContainsAny(rev, " \t\n") {
		return fmt.Errorf("%w: %s %q must not contain whitespace", ErrInvalidRangeSpec, name, rev)
	}
	return nil
}

// Window parses the date bounds into the inclusive local-time window.
func (d DateRange) Window() (since, until time.Time, err error) {
	start, err := time.ParseInLocation(DateLayout, d.Start, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date %q (expected YYYY-MM-DD)", ErrInvalidDate, d.Start)
	}
	end, err := time.ParseInLocation(DateLayout, d.End, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date %q (expected YYYY-MM-DD)", ErrInvalidDate, d.End)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidDate, d.End, d.Start)
	}
	return start, time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.Local), nil
}

func (d DateRange) sinceArg() string { return d.Start + " 00:00:00" }
func (d DateRange) untilArg() string { return d.End + " 23:59:59" }

// Description is the one-line range summary used in logs.
func (s RangeSpec) Description() string {
	switch s.Mode() {
	case ModeDateRange:
		return fmt.Sprintf("Date Range on branch '%s' from %s to %s", s.Date.Branch, s.Date.Start, s.Date.End)
	case ModeShaRange:
		return fmt.Sprintf("SHA Range %s..%s", ShortSHA(s.Shas.Start, 7), ShortSHA(s.Shas.End, 7))
	case ModeSingleCommit:
		return fmt.Sprintf("Single Commit: %s", ShortSHA(s.Commit.SHA, 7))
	default:
		return "invalid range"
	}
}

// ChangelogLines is the range description block of the changelog header.
func (s RangeSpec) ChangelogLines() []string {
	switch s.Mode() {
	case ModeDateRange:
		return []string{
			"Branch: " + s.Date.Branch,
			fmt.Sprintf("Date Range: %s to %s", s.Date.Start, s.Date.End),
		}
	case ModeShaRange:
		return []string{fmt.Sprintf("SHA Range: %s..%s", ShortSHA(s.Shas.Start, 7), ShortSHA(s.Shas.End, 7))}
	case ModeSingleCommit:
		return []string{"Commit: " + s.Commit.SHA}
	default:
		return nil
	}
}

// Parameters flattens the mode parameters for run history.
func (s RangeSpec) Parameters() map[string]string {
	switch s.Mode() {
	case ModeDateRange:
		return map[string]string{"branch": s.Date.Branch, "start_date": s.Date.Start, "end_date": s.Date.End}
	case ModeShaRange:
		return map[string]string{"start_sha": s.Shas.Start, "end_sha": s.Shas.End}
	case ModeSingleCommit:
		return map[string]string{"commit_sha": s.Commit.SHA}
	default:
		return map[string]string{}
	}
}

// SpecFromParameters rebuilds a spec from a mode and its flattened parameters.
func SpecFromParameters(mode Mode, params map[string]string) (RangeSpec, error) {
	var spec RangeSpec
	switch mode {
	case ModeDateRange:
		spec = NewDateRange(params["branch"], params["start_date"], params["end_date"])
	case ModeShaRange:
		spec = NewShaRange(params["start_sha"], params["end_sha"])
	case ModeSingleCommit:
		spec = NewSingleCommit(params["commit_sha"])
	default:
		return RangeSpec{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidRangeSpec, mode)
	}
	return spec, spec.Validate()
}

// uniqueSorted deduplicates and sorts path lines.
func uniqueSorted(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// uniqueOrdered deduplicates paths keeping first-seen order.
func uniqueOrdered(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok || p == "" {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
