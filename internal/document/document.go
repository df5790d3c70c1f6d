// Package document loads document pages as bitmaps: image files directly
// and PDF pages through pdftoppm.
package document

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrUnsupportedDocument is returned for files that are neither a supported
// image format nor a PDF.
var ErrUnsupportedDocument = errors.New("unsupported document type")

// Rasterizer renders one page of a document as a bitmap. Pages are numbered
// from 1.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, page int) (image.Image, error)
}

// Page is a rasterized document page.
type Page struct {
	Path   string      // Source file path
	Number int         // 1-based page number
	Image  image.Image // Page bitmap
	DPI    float64     // Known or rendered resolution, 0 if unknown
}

// Width returns the page width in pixels.
func (p *Page) Width() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dx()
}

// Height returns the page height in pixels.
func (p *Page) Height() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dy()
}

// PixelAt returns the color at the specified pixel, black outside the page.
func (p *Page) PixelAt(x, y int) color.Color {
	if p.Image == nil {
		return color.Black
	}
	b := p.Image.Bounds()
	pt := image.Point{X: b.Min.X + x, Y: b.Min.Y + y}
	if !pt.In(b) {
		return color.Black
	}
	return p.Image.At(pt.X, pt.Y)
}

// Open rasterizes one page of the document at path, choosing the loader by
// file extension.
func Open(ctx context.Context, path string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	var r Rasterizer
	var dpi float64
	switch {
	case IsPDF(path):
		pdf := NewPDFRasterizer()
		r, dpi = pdf, float64(pdf.DPI)
	case IsImage(path):
		r = ImageLoader{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, filepath.Ext(path))
	}

	img, err := r.Rasterize(ctx, path, page)
	if err != nil {
		return nil, err
	}
	if dpi == 0 && isTIFF(path) {
		if d, err := tiffDPI(path); err == nil {
			dpi = d
		}
	}
	return &Page{Path: path, Number: page, Image: img, DPI: dpi}, nil
}

// ImageLoader decodes PNG, JPEG, TIFF and BMP files. Image files have a
// single page.
type ImageLoader struct{}

// Rasterize decodes the image file at path.
func (ImageLoader) Rasterize(ctx context.Context, path string, page int) (image.Image, error) {
	if page > 1 {
		return nil, fmt.Errorf("%s: image files have one page, requested %d", path, page)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

var imageFormats = []string{".png", ".jpg", ".jpeg", ".tiff", ".tif", ".bmp"}

// SupportedFormats returns the file extensions that can be opened.
func SupportedFormats() []string {
	return append(append([]string(nil), imageFormats...), ".pdf")
}

// IsSupported reports whether path has an extension Open accepts.
func IsSupported(path string) bool {
	return IsPDF(path) || IsImage(path)
}

// IsImage reports whether path is a supported image file.
func IsImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range imageFormats {
		if ext == f {
			return true
		}
	}
	return false
}

// IsPDF reports whether path is a PDF file.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func isTIFF(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".tif" || ext == ".tiff"
}

// tiffDPI reads the resolution tags of the first TIFF directory.
func tiffDPI(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	header := make([]byte, 8)
	if _, err := io.ReadFull(file, header); err != nil {
		return 0, err
	}

	var order binary.ByteOrder
	switch string(header[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, fmt.Errorf("not a valid TIFF file")
	}

	if _, err := file.Seek(int64(order.Uint32(header[4:8])), io.SeekStart); err != nil {
		return 0, err
	}
	var count uint16
	if err := binary.Read(file, order, &count); err != nil {
		return 0, err
	}

	var xRes, yRes float64
	unit := uint16(2) // inches
	entry := make([]byte, 12)
	for i := uint16(0); i < count; i++ {
		if _, err := io.ReadFull(file, entry); err != nil {
			return 0, err
		}
		tag := order.Uint16(entry[0:2])
		kind := order.Uint16(entry[2:4])
		switch {
		case tag == 282 && kind == 5: // XResolution, RATIONAL
			xRes = readRational(file, int64(order.Uint32(entry[8:12])), order)
		case tag == 283 && kind == 5: // YResolution, RATIONAL
			yRes = readRational(file, int64(order.Uint32(entry[8:12])), order)
		case tag == 296 && kind == 3: // ResolutionUnit, SHORT
			unit = order.Uint16(entry[8:10])
		}
	}

	dpi := xRes
	if dpi == 0 {
		dpi = yRes
	}
	if dpi == 0 {
		return 0, fmt.Errorf("no resolution tags found")
	}
	switch unit {
	case 3: // centimeters
		dpi *= 2.54
	case 1: // no absolute unit
		return 0, fmt.Errorf("resolution has no unit")
	}
	return dpi, nil
}

func readRational(file *os.File, offset int64, order binary.ByteOrder) float64 {
	pos, _ := file.Seek(0, io.SeekCurrent)
	defer file.Seek(pos, io.SeekStart)

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return 0
	}
	var num, denom uint32
	if binary.Read(file, order, &num) != nil || binary.Read(file, order, &denom) != nil || denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}
