package ocr

import (
	"image"
	"image/color"

	"region-mapper/pkg/geometry"

	"golang.org/x/image/draw"
)

// ToRGBA returns img as an RGBA image with its origin at (0, 0). RGBA images
// already at the origin are returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Crop copies the page pixels inside r, given relative to the page origin.
func Crop(page image.Image, r geometry.RectInt) *image.RGBA {
	b := page.Bounds()
	src := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height).Add(b.Min).Intersect(b)
	out := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Draw(out, out.Bounds(), page, src.Min, draw.Src)
	return out
}

// BackgroundColor samples the border pixels of an RGBA image and returns
// their average color.
func BackgroundColor(img *image.RGBA) color.RGBA {
	bounds := img.Bounds()
	var r, g, b, count uint64
	add := func(x, y int) {
		c := img.RGBAAt(x, y)
		r += uint64(c.R)
		g += uint64(c.G)
		b += uint64(c.B)
		count++
	}

	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		add(x, bounds.Min.Y)
		add(x, bounds.Max.Y-1)
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		add(bounds.Min.X, y)
		add(bounds.Max.X-1, y)
	}

	if count == 0 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{
		R: uint8(r / count),
		G: uint8(g / count),
		B: uint8(b / count),
		A: 255,
	}
}
