// Package mask renders the binary region mask used to blank out everything
// but the labeled regions before OCR.
package mask

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"region-mapper/internal/region"
	"region-mapper/internal/viewport"
	"region-mapper/pkg/geometry"

	"golang.org/x/image/draw"
)

// Render returns a width x height mask that is white inside every rectangle
// and black elsewhere. Rectangles are normalized coords; inverted corners are
// ordered and the result is clamped to the page.
func Render(width, height int, rects []geometry.Coords) *image.Gray {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	for _, c := range rects {
		r := viewport.ImageRect(c, width, height)
		if r.Empty() {
			continue
		}
		box := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
		draw.Draw(img, box, image.White, image.Point{}, draw.Src)
	}
	return img
}

// FromState renders the mask for every region of a snapshot.
func FromState(width, height int, st region.State) *image.Gray {
	rects := make([]geometry.Coords, len(st.Regions))
	for i, r := range st.Regions {
		rects[i] = r.Coords
	}
	return Render(width, height, rects)
}

// Coverage returns the fraction of mask pixels that are white.
func Coverage(img *image.Gray) float64 {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	white := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.GrayAt(x, y).Y > 127 {
				white++
			}
		}
	}
	return float64(white) / float64(total)
}

// Apply returns a copy of src with every pixel outside the mask painted fill.
func Apply(src image.Image, m *image.Gray, fill color.Color) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, src, b.Min, draw.Src)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			mx, my := x-b.Min.X, y-b.Min.Y
			if !(image.Point{X: mx, Y: my}).In(m.Bounds()) || m.GrayAt(mx, my).Y <= 127 {
				out.Set(x, y, fill)
			}
		}
	}
	return out
}

// WritePNG writes img to path, replacing any existing file only once the new
// one is complete.
func WritePNG(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("encode mask: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(name, 0644); err != nil {
		return err
	}
	return os.Rename(name, path)
}
