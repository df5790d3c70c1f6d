package viewport

import (
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"region-mapper/pkg/geometry"

	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-9

func newView(imgW, imgH int, vw, vh float64) *ViewState {
	v := NewViewState()
	v.SetImageSize(imgW, imgH)
	v.SetViewportSize(vw, vh)
	return v
}

func TestBaseScale(t *testing.T) {
	tests := []struct {
		name   string
		imgW   int
		imgH   int
		vw, vh float64
		want   float64
	}{
		{"fits width", 2000, 1000, 1000, 1000, 0.5},
		{"fits height", 1000, 4000, 1000, 1000, 0.25},
		{"never enlarges", 100, 100, 1000, 1000, 1.0},
		{"no viewport", 100, 100, 0, 0, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newView(tt.imgW, tt.imgH, tt.vw, tt.vh)
			if got := v.BaseScale(); !scalar.EqualWithinAbs(got, tt.want, tol) {
				t.Errorf("BaseScale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransformCentersImage(t *testing.T) {
	v := newView(2000, 1000, 1000, 800)
	tr, err := v.Transform()
	if err != nil {
		t.Fatal(err)
	}
	// scale 0.5 -> 1000x500 centered vertically in 800
	o := tr.Origin()
	if o.X != 0 || o.Y != 150 {
		t.Errorf("Origin() = %+v, want {0 150}", o)
	}
	r := tr.ImageRect()
	if r != geometry.NewCoords(0, 150, 1000, 650) {
		t.Errorf("ImageRect() = %+v", r)
	}
}

func TestNoDocument(t *testing.T) {
	v := NewViewState()
	v.SetViewportSize(800, 600)
	if _, err := v.Transform(); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Transform() error = %v, want ErrNoDocument", err)
	}
}

func TestNormalizedRoundTrip(t *testing.T) {
	v := newView(1700, 2200, 900, 700)
	v.SetZoom(2.3)
	v.Pan(-40, 17)
	tr, _ := v.Transform()

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		n := geometry.NewCoords(rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64())

		p1 := tr.ImageToNormalized(tr.NormalizedToImage(geometry.Point2D{X: n.X1, Y: n.Y1}))
		if !scalar.EqualWithinAbs(p1.X, n.X1, tol) || !scalar.EqualWithinAbs(p1.Y, n.Y1, tol) {
			t.Fatalf("image round trip %+v -> %+v", n, p1)
		}

		back := tr.DisplayToNormalized(tr.NormalizedToDisplay(n))
		if !back.EqualWithin(n, tol) {
			t.Fatalf("display round trip %+v -> %+v", n, back)
		}
	}
}

func TestDisplayDeltaToNormalized(t *testing.T) {
	// 2000x1000 image in a 1000x1000 viewport gives scale 0.5 at zoom 1.
	v := newView(2000, 1000, 1000, 1000)
	tr, _ := v.Transform()
	if !scalar.EqualWithinAbs(tr.Scale(), 0.5, tol) {
		t.Fatalf("Scale() = %v, want 0.5", tr.Scale())
	}
	dx, dy := tr.DisplayDeltaToNormalized(50, 50)
	if !scalar.EqualWithinAbs(dx, 50.0/2000/0.5, tol) || !scalar.EqualWithinAbs(dy, 50.0/1000/0.5, tol) {
		t.Errorf("delta = (%v, %v)", dx, dy)
	}
}

func TestImageRect(t *testing.T) {
	tests := []struct {
		name string
		c    geometry.Coords
		want geometry.RectInt
	}{
		{"ordered", geometry.NewCoords(0.1, 0.2, 0.5, 0.6), geometry.RectInt{X: 10, Y: 40, Width: 40, Height: 80}},
		{"inverted", geometry.NewCoords(0.5, 0.6, 0.1, 0.2), geometry.RectInt{X: 10, Y: 40, Width: 40, Height: 80}},
		{"truncates", geometry.NewCoords(0.119, 0.0, 0.129, 0.01), geometry.RectInt{X: 11, Y: 0, Width: 1, Height: 2}},
		{"clamped", geometry.NewCoords(-0.2, -0.1, 1.5, 1.2), geometry.RectInt{X: 0, Y: 0, Width: 100, Height: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageRect(tt.c, 100, 200); got != tt.want {
				t.Errorf("ImageRect = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestZoomClamp(t *testing.T) {
	v := newView(100, 100, 100, 100)
	v.SetZoom(100)
	if v.Zoom != DefaultMaxZoom {
		t.Errorf("Zoom = %v, want %v", v.Zoom, DefaultMaxZoom)
	}
	v.SetZoom(0)
	if v.Zoom != DefaultMinZoom {
		t.Errorf("Zoom = %v, want %v", v.Zoom, DefaultMinZoom)
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	v := newView(1000, 800, 600, 600)
	anchor := geometry.Point2D{X: 420, Y: 130}

	before, _ := v.Transform()
	imgPt := before.DisplayToImage(anchor)

	v.ZoomAt(anchor, 3.0)
	after, _ := v.Transform()
	landed := after.ImageToDisplay(imgPt)
	if landed.Distance(anchor) > 1e-6 {
		t.Errorf("anchor moved from %+v to %+v", anchor, landed)
	}
	if v.Zoom != 3.0 {
		t.Errorf("Zoom = %v, want 3", v.Zoom)
	}
}

func TestZoomAnimation(t *testing.T) {
	v := newView(1000, 1000, 500, 500)
	anim := v.AnimateZoom(2.0, geometry.Point2D{X: 250, Y: 250}, 0.3)

	done := false
	for i := 0; i < 100 && !done; i++ {
		done = anim.Step(v, 0.016)
	}
	if !done {
		t.Fatal("animation did not finish")
	}
	if !scalar.EqualWithinAbs(v.Zoom, 2.0, 1e-4) {
		t.Errorf("Zoom = %v, want 2", v.Zoom)
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls, last int32
	for i := 1; i <= 10; i++ {
		n := int32(i)
		d.Call(func() {
			atomic.AddInt32(&calls, 1)
			atomic.StoreInt32(&last, n)
		})
	}
	time.Sleep(150 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&last); got != 10 {
		t.Errorf("last = %d, want 10", got)
	}
}

func TestDebouncerFlushAndStop(t *testing.T) {
	d := NewDebouncer(time.Hour)
	ran := false
	d.Call(func() { ran = true })
	if !d.Pending() {
		t.Fatal("expected pending call")
	}
	d.Flush()
	if !ran {
		t.Error("Flush did not run the pending call")
	}

	ran = false
	d.Call(func() { ran = true })
	d.Stop()
	d.Flush()
	if ran {
		t.Error("Stop did not discard the pending call")
	}
}
