// Package archive packages a staged directory tree into a zip, tar or
// gzip-compressed tar container.
package archive

import (
	"fmt"
	"strings"
)

// Format identifies a container format.
type Format string

const (
	FormatZip   Format = "zip"
	FormatTar   Format = "tar"
	FormatTarGz Format = "tar.gz"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatZip, FormatTar, FormatTarGz}

// ParseFormat parses a format name. "" selects zip.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zip":
		return FormatZip, nil
	case "tar":
		return FormatTar, nil
	case "tar.gz", "tgz", "gztar", "targz":
		return FormatTarGz, nil
	default:
		return "", fmt.Errorf("unsupported archive format %q (expected zip, tar or tar.gz)", s)
	}
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatTar:
		return ".tar"
	case FormatTarGz:
		return ".tar.gz"
	default:
		return ".zip"
	}
}

// recognized extensions, longest first so ".tar.gz" wins over ".gz".
var knownExtensions = []string{".tar.gz", ".tgz", ".tar", ".zip"}

// BasePath strips a recognized archive extension from output, so that
// "out.zip", "out.tar.gz" and "out" all share the base "out".
func BasePath(output string) string {
	lower := strings.ToLower(output)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext) && len(output) > len(ext) {
			return output[:len(output)-len(ext)]
		}
	}
	return output
}

// OutputPaths returns the container and changelog paths for an output
// argument and format.
func OutputPaths(output string, f Format) (container, changelog string) {
	base := BasePath(output)
	return base + f.Extension(), base + ".txt"
}
