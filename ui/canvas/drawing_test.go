package canvas

import (
	"image"
	"image/color"
	"testing"

	"region-mapper/internal/editor"
	"region-mapper/internal/region"
	"region-mapper/pkg/colorutil"
	"region-mapper/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

func TestRenderShape(t *testing.T) {
	rect := geometry.NewCoords(50, 50, 10, 10) // inverted corners
	out := Render(100, 100, Frame{
		Shapes:  []Shape{{Name: "A", Rect: rect, Color: region.Blue, Selected: true}},
		Handles: &rect,
	})

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"background", 90, 90, colorutil.Background},
		{"left edge", 10, 20, colorutil.Selection},
		{"inner stroke", 11, 20, colorutil.Selection},
		{"fill", 30, 30, colorutil.Blend(colorutil.Background, colorutil.WithAlpha(colorutil.Named("blue"), selectedFillAlpha))},
		{"north handle", 30, 10, colorutil.White},
	}
	for _, tt := range tests {
		if got := out.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("%s (%d,%d) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderPage(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{R: 255, A: 255}
	for i := 0; i < len(page.Pix); i += 4 {
		copy(page.Pix[i:i+4], []uint8{red.R, red.G, red.B, red.A})
	}
	// Upscaled 3x, which renders with nearest neighbor.
	out := Render(50, 50, Frame{
		Page:     page,
		PageRect: geometry.NewCoords(10, 10, 40, 40),
	})
	if got := out.RGBAAt(20, 20); got != red {
		t.Errorf("page pixel = %v", got)
	}
	if got := out.RGBAAt(5, 5); got != colorutil.Background {
		t.Errorf("outside page = %v", got)
	}
}

func TestRenderScaleAndRubberband(t *testing.T) {
	box := geometry.NewCoords(2, 2, 10, 10)
	out := Render(40, 40, Frame{
		Rubberband:      &box,
		RubberbandColor: colorutil.BoxSelect,
		Scale:           2,
	})
	// (4,4) is on the scaled outline and inside the dash pattern.
	if got := out.RGBAAt(4, 4); got != colorutil.BoxSelect {
		t.Errorf("rubber band corner = %v", got)
	}
	if got := out.RGBAAt(12, 12); got != colorutil.Background {
		t.Errorf("rubber band interior = %v", got)
	}
}

func newFrameSession(t *testing.T) *editor.Session {
	t.Helper()
	s := editor.NewSession(editor.DefaultOptions())
	t.Cleanup(s.Close)
	s.SetViewportSize(200, 100)
	if err := s.LoadDocument(editor.Document{Path: "p.png", Page: 1, Width: 200, Height: 100}); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBuildFrame(t *testing.T) {
	s := newFrameSession(t)
	if err := s.CreateRegion("A", 10, 10, 50, 50); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateRegion("B", 100, 10, 150, 50); err != nil {
		t.Fatal(err)
	}
	s.Select("B")
	s.UpdateHover(geometry.Point2D{X: 10, Y: 30})

	f := BuildFrame(s, nil, 1)
	if len(f.Shapes) != 2 {
		t.Fatalf("shapes = %+v", f.Shapes)
	}
	if f.Shapes[0].Name != "A" || f.Shapes[0].Selected || !f.Shapes[0].Hovered {
		t.Errorf("A = %+v", f.Shapes[0])
	}
	if !f.Shapes[1].Selected {
		t.Errorf("B = %+v", f.Shapes[1])
	}
	if f.Handles == nil || !f.Handles.EqualWithin(geometry.NewCoords(100, 10, 150, 50), 1e-9) {
		t.Errorf("handles = %v", f.Handles)
	}
	if f.Rubberband != nil {
		t.Error("rubber band without gesture")
	}

	s.SelectAll()
	if f := BuildFrame(s, nil, 1); f.Handles != nil {
		t.Error("handles drawn for multiple selection")
	}

	s.DeselectAll()
	if err := s.BeginBox(geometry.Point2D{X: 5, Y: 5}, false); err != nil {
		t.Fatal(err)
	}
	if err := s.DragBox(geometry.Point2D{X: 60, Y: 60}); err != nil {
		t.Fatal(err)
	}
	f = BuildFrame(s, nil, 1)
	if f.Rubberband == nil || f.RubberbandColor != colorutil.BoxSelect {
		t.Errorf("rubber band = %v %v", f.Rubberband, f.RubberbandColor)
	}
}

func TestBuildFrameNoDocument(t *testing.T) {
	s := editor.NewSession(editor.DefaultOptions())
	defer s.Close()
	if f := BuildFrame(s, nil, 1); len(f.Shapes) != 0 || f.Page != nil {
		t.Errorf("frame without document = %+v", f)
	}
}

func TestShortcutKey(t *testing.T) {
	tests := []struct {
		name string
		in   fyne.Shortcut
		want editor.KeyEvent
		ok   bool
	}{
		{"redo", &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift},
			editor.KeyEvent{Name: "Z", Mods: editor.Ctrl | editor.Shift}, true},
		{"duplicate mac", &desktop.CustomShortcut{KeyName: fyne.KeyD, Modifier: fyne.KeyModifierSuper},
			editor.KeyEvent{Name: "D", Mods: editor.Ctrl}, true},
		{"select all", &fyne.ShortcutSelectAll{}, editor.KeyEvent{Name: "A", Mods: editor.Ctrl}, true},
		{"copy", &fyne.ShortcutCopy{}, editor.KeyEvent{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := shortcutKey(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("shortcutKey = %+v, %v, want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestToButton(t *testing.T) {
	if toButton(desktop.MouseButtonTertiary) != editor.ButtonMiddle {
		t.Error("tertiary is not middle")
	}
	if toButton(desktop.MouseButtonPrimary) != editor.ButtonPrimary {
		t.Error("primary mapping")
	}
}
