package export

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"region-mapper/internal/mask"
	"region-mapper/internal/region"
)

// MaskPath returns the mask image path paired with a JSON region file.
func MaskPath(jsonPath string) string {
	return strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + "_mask.png"
}

// Write exports a snapshot to path in format f. The mask format writes the
// JSON payload to path and the mask image next to it; a .png path names the
// JSON file after it instead. It returns the files written.
func Write(path string, f Format, meta Meta, st region.State) ([]string, error) {
	switch f {
	case FormatCSV:
		if err := WriteCSVFile(path, st); err != nil {
			return nil, fmt.Errorf("export csv: %w", err)
		}
		return []string{path}, nil
	case FormatMask:
		if meta.Width <= 0 || meta.Height <= 0 {
			return nil, fmt.Errorf("export mask: image size unknown")
		}
		if strings.EqualFold(filepath.Ext(path), ".png") {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
		}
		if err := WriteJSON(path, Build(meta, st)); err != nil {
			return nil, fmt.Errorf("export json: %w", err)
		}
		mp := MaskPath(path)
		if err := mask.WritePNG(mp, mask.FromState(meta.Width, meta.Height, st)); err != nil {
			return nil, fmt.Errorf("export mask: %w", err)
		}
		return []string{path, mp}, nil
	case FormatJSON:
		if err := WriteJSON(path, Build(meta, st)); err != nil {
			return nil, fmt.Errorf("export json: %w", err)
		}
		return []string{path}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// WriteNamed resolves a format name and exports. An unknown name is logged
// and the default format is used instead.
func WriteNamed(path, format string, meta Meta, st region.State) ([]string, error) {
	f, err := ResolveFormat(format)
	if err != nil {
		log.Printf("Export: %v, writing %s", err, f)
	}
	written, err := Write(path, f, meta, st)
	if err != nil {
		return nil, err
	}
	log.Printf("Exported %d regions to %s", len(st.Regions), strings.Join(written, ", "))
	return written, nil
}
