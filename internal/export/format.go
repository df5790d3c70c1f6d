// Package export reads and writes region files: the JSON payload, CSV
// tables and the mask artifact pair.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Errors returned by the exporters and importers.
var (
	ErrInvalidFormat     = errors.New("invalid region file")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Format names an export target.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatMask Format = "mask"
)

// DefaultFormat is used when a requested format is unknown.
const DefaultFormat = FormatJSON

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatMask}

// ResolveFormat maps a format name to a Format. Unknown names resolve to
// DefaultFormat together with ErrUnsupportedFormat so callers can warn and
// carry on.
func ResolveFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if f == "" {
		return DefaultFormat, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return DefaultFormat, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatForPath picks a format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".png":
		return FormatMask
	}
	return FormatJSON
}

// Extension returns the file extension of the primary file written for f.
// The mask format's primary file is the JSON region file.
func (f Format) Extension() string {
	if f == FormatCSV {
		return ".csv"
	}
	return ".json"
}

// writeAtomic writes a file through a temporary sibling and a rename so that
// readers never see a partial file.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(name, 0644); err != nil {
		return err
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// ResolveDocumentPath returns the absolute path of a document referenced from
// the region file at filePath.
func ResolveDocumentPath(filePath, docPath string) string {
	if docPath == "" || filepath.IsAbs(docPath) {
		return docPath
	}
	return filepath.Join(filepath.Dir(filePath), docPath)
}
