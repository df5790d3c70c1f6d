package document

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultDPI is the resolution PDF pages are rendered at.
const DefaultDPI = 150

// PDFRasterizer renders PDF pages with the poppler pdftoppm tool.
type PDFRasterizer struct {
	Command string // pdftoppm executable
	InfoCmd string // pdfinfo executable
	DPI     int
}

// NewPDFRasterizer returns a rasterizer using pdftoppm from PATH at
// DefaultDPI.
func NewPDFRasterizer() *PDFRasterizer {
	return &PDFRasterizer{Command: "pdftoppm", InfoCmd: "pdfinfo", DPI: DefaultDPI}
}

// Rasterize renders one page to an image.
func (r *PDFRasterizer) Rasterize(ctx context.Context, path string, page int) (image.Image, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d", page)
	}
	dir, err := os.MkdirTemp("", "region-mapper-page")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	dpi := r.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	p := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, r.Command,
		"-f", p, "-l", p,
		"-r", strconv.Itoa(dpi),
		"-png", "-singlefile",
		path, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	log.Printf("Rasterizing %s page %d at %d DPI", path, page, dpi)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("pdftoppm %s page %d: %w: %s", path, page, err, strings.TrimSpace(stderr.String()))
	}

	f, err := os.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no output: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page: %w", err)
	}
	return img, nil
}

// PageCount returns the number of pages of a PDF using pdfinfo.
func (r *PDFRasterizer) PageCount(ctx context.Context, path string) (int, error) {
	out, err := exec.CommandContext(ctx, r.InfoCmd, path).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo %s: %w", path, err)
	}
	return parsePageCount(string(out))
}

func parsePageCount(info string) (int, error) {
	for _, line := range strings.Split(info, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("parse page count: %w", err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("page count not found")
}

// PageCount returns the number of pages of the document at path.
func PageCount(ctx context.Context, path string) (int, error) {
	switch {
	case IsPDF(path):
		return NewPDFRasterizer().PageCount(ctx, path)
	case IsImage(path):
		return 1, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedDocument, filepath.Ext(path))
}
