package document

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 12, 7))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(3, 2, color.RGBA{200, 10, 10, 255})
	return img
}

func TestOpenImageFormats(t *testing.T) {
	dir := t.TempDir()
	encoders := map[string]func(*os.File, image.Image) error{
		"page.png":  func(f *os.File, m image.Image) error { return png.Encode(f, m) },
		"page.bmp":  func(f *os.File, m image.Image) error { return bmp.Encode(f, m) },
		"page.tiff": func(f *os.File, m image.Image) error { return tiff.Encode(f, m, nil) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := encode(f, testImage()); err != nil {
				t.Fatal(err)
			}
			f.Close()

			page, err := Open(context.Background(), path, 1)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if page.Width() != 12 || page.Height() != 7 || page.Number != 1 {
				t.Errorf("page = %dx%d #%d", page.Width(), page.Height(), page.Number)
			}
			r, _, _, _ := page.PixelAt(3, 2).RGBA()
			if r>>8 != 200 {
				t.Errorf("pixel red = %d, want 200", r>>8)
			}
			if c := page.PixelAt(100, 100); c != color.Black {
				t.Errorf("outside pixel = %v, want black", c)
			}
		})
	}
}

func TestOpenRejects(t *testing.T) {
	if _, err := Open(context.Background(), "notes.docx", 1); !errors.Is(err, ErrUnsupportedDocument) {
		t.Errorf("err = %v, want ErrUnsupportedDocument", err)
	}
	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.png"), 1); err == nil {
		t.Error("missing file opened")
	}
	path := filepath.Join(t.TempDir(), "one.png")
	f, _ := os.Create(path)
	_ = png.Encode(f, testImage())
	f.Close()
	if _, err := (ImageLoader{}).Rasterize(context.Background(), path, 2); err == nil {
		t.Error("page 2 of an image file opened")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (ImageLoader{}).Rasterize(ctx, path, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled err = %v", err)
	}
}

func TestIsSupported(t *testing.T) {
	tests := map[string]bool{
		"a.PNG":  true,
		"a.jpeg": true,
		"a.tif":  true,
		"a.bmp":  true,
		"a.Pdf":  true,
		"a.gif":  false,
		"a":      false,
	}
	for path, want := range tests {
		if got := IsSupported(path); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestParsePageCount(t *testing.T) {
	info := "Producer:       pdfTeX\nPages:          14\nEncrypted:      no\n"
	n, err := parsePageCount(info)
	if err != nil || n != 14 {
		t.Errorf("parsePageCount = %d, %v, want 14", n, err)
	}
	if _, err := parsePageCount("Title: x\n"); err == nil {
		t.Error("missing Pages line accepted")
	}
}

func TestPDFRasterizerMissingTool(t *testing.T) {
	r := &PDFRasterizer{Command: filepath.Join(t.TempDir(), "no-such-pdftoppm"), DPI: 72}
	if _, err := r.Rasterize(context.Background(), "doc.pdf", 1); err == nil {
		t.Error("missing pdftoppm reported success")
	}
	if _, err := r.Rasterize(context.Background(), "doc.pdf", 0); err == nil {
		t.Error("page 0 accepted")
	}
}
