package archive

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for paths that resolve to nothing usable.
var ErrUnsafePath = errors.New("unsafe path")

// SanitizePath normalizes an entry path: forward slashes, no leading '/',
// with '.' and '..' segments removed without escaping the root. On Windows
// backslashes are separators and a drive letter is dropped; elsewhere a
// backslash is an ordinary filename character. It returns "" when nothing
// remains.
func SanitizePath(p string) string {
	s := filepath.ToSlash(p)
	if filepath.Separator == '\\' && len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			continue
		}
		stack = append(stack, part)
	}
	return strings.Join(stack, "/")
}

// StagePath maps a repository-relative path to its location under root.
// The result is always inside root.
func StagePath(root, rel string) (string, error) {
	clean := SanitizePath(rel)
	if clean == "" {
		return "", ErrUnsafePath
	}
	return filepath.Join(root, filepath.FromSlash(clean)), nil
}
