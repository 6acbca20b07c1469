package git

import (
	"context"
	"fmt"
	"strings"
)

// ParseShaRange splits a "start..end" argument into its two endpoints.
// Three-dot (symmetric difference) notation is rejected: SHA ranges always
// diff start against end directly.
func ParseShaRange(spec string) (start, end string, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", "", fmt.Errorf("%w: empty SHA range", ErrInvalidRangeSpec)
	}
	if strings.Contains(spec, "...") {
		return "", "", fmt.Errorf("%w: %q uses '...'; use 'start..end'", ErrInvalidRangeSpec, spec)
	}

	idx := strings.Index(spec, "..")
	if idx == -1 {
		return "", "", fmt.Errorf("%w: %q: expected 'start..end'", ErrInvalidRangeSpec, spec)
	}
	start = spec[:idx]
	end = spec[idx+2:]

	if start == "" {
		return "", "", fmt.Errorf("%w: %q: missing start SHA", ErrInvalidRangeSpec, spec)
	}
	if end == "" {
		end = "HEAD"
	}
	return start, end, nil
}

// diffPaths lists the paths that differ between start and end.
func diffPaths(ctx context.Context, r *Runner, start, end string) ([]string, error) {
	res := r.Run(ctx, "diff", "--name-only", start+".."+end)
	if !res.OK() {
		return nil, fmt.Errorf("%w: %v", ErrFileListFailed, res.Err)
	}
	return uniqueSorted(res.Lines()), nil
}
