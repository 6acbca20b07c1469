package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FixedTime is used for entries when no modification time is supplied
// (1980-01-01 UTC, the zip epoch).
var FixedTime = time.Unix(315532800, 0).UTC()

// Options controls container metadata.
type Options struct {
	// ModTime is stamped on every entry. Zero means FixedTime.
	ModTime time.Time
}

func (o Options) modTime() time.Time {
	if o.ModTime.IsZero() {
		return FixedTime
	}
	return o.ModTime
}

type entry struct {
	name string // slash-separated, relative to the source root
	abs  string
	size int64
}

// collect lists the regular files under root, sorted by entry name.
func collect(root string) ([]entry, error) {
	var entries []entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		name := SanitizePath(rel)
		if name == "" {
			return nil
		}
		entries = append(entries, entry{name: name, abs: path, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries, nil
}

// WriteDir packages every regular file under srcDir into dest. Entry names
// are relative to srcDir. A partially written dest is removed on failure.
// It returns the number of entries written.
func WriteDir(format Format, srcDir, dest string, opts Options) (n int, err error) {
	entries, err := collect(srcDir)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", srcDir, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", dest, cerr)
		}
		if err != nil {
			_ = os.Remove(dest)
			n = 0
		}
	}()

	switch format {
	case FormatZip:
		err = writeZip(f, entries, opts.modTime())
	case FormatTar:
		err = writeTar(f, entries, opts.modTime())
	case FormatTarGz:
		gz := gzip.NewWriter(f)
		gz.ModTime = opts.modTime()
		err = writeTar(gz, entries, opts.modTime())
		if cerr := gz.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("finish gzip stream: %w", cerr)
		}
	default:
		err = fmt.Errorf("unsupported archive format %q", format)
	}
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func writeZip(w io.Writer, entries []entry, modTime time.Time) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		h := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		h.SetMode(0o644)
		h.Modified = modTime
		dst, err := zw.CreateHeader(h)
		if err != nil {
			return fmt.Errorf("create %s: %w", e.name, err)
		}
		if err := copyFile(dst, e.abs); err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	return nil
}

func writeTar(w io.Writer, entries []entry, modTime time.Time) error {
	tw := tar.NewWriter(w)
	for _, e := range entries {
		h := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     e.name,
			Mode:     0o644,
			Size:     e.size,
			ModTime:  modTime,
			Format:   tar.FormatPAX,
		}
		if err := tw.WriteHeader(h); err != nil {
			return fmt.Errorf("create %s: %w", e.name, err)
		}
		if err := copyFile(tw, e.abs); err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("finish tar: %w", err)
	}
	return nil
}

func copyFile(dst io.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}
