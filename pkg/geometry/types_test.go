package geometry

import (
	"testing"
)

func TestCoordsNormalized(t *testing.T) {
	c := NewCoords(0.8, 0.9, 0.2, 0.1).Normalized()
	want := NewCoords(0.2, 0.1, 0.8, 0.9)
	if c != want {
		t.Errorf("Normalized() = %+v, want %+v", c, want)
	}
}

func TestCoordsIntersects(t *testing.T) {
	base := NewCoords(10, 10, 20, 20)
	tests := []struct {
		name  string
		other Coords
		want  bool
	}{
		{"overlap", NewCoords(15, 15, 30, 30), true},
		{"inside", NewCoords(12, 12, 14, 14), true},
		{"touching edge", NewCoords(20, 10, 30, 20), true},
		{"touching corner", NewCoords(20, 20, 25, 25), true},
		{"inverted overlap", NewCoords(30, 30, 15, 15), true},
		{"left", NewCoords(0, 10, 9.9, 20), false},
		{"below", NewCoords(10, 20.1, 20, 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects(%+v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestCoordsNearBorder(t *testing.T) {
	c := NewCoords(100, 100, 200, 200)
	tests := []struct {
		name string
		p    Point2D
		want bool
	}{
		{"on left edge", Point2D{100, 150}, true},
		{"just outside top", Point2D{150, 98.5}, true},
		{"just inside right", Point2D{198.5, 150}, true},
		{"center", Point2D{150, 150}, false},
		{"far outside", Point2D{50, 50}, false},
		{"outside tolerance", Point2D{150, 97}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.NearBorder(tt.p, 2); got != tt.want {
				t.Errorf("NearBorder(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestNearBorderDegenerate(t *testing.T) {
	c := NewCoords(50, 50, 50, 50)
	if !c.NearBorder(Point2D{51, 49}, 2) {
		t.Error("expected zero-area rect to be hit near its point")
	}
}

func TestAffineInverse(t *testing.T) {
	tr := Scale(0.5, 0.5).Compose(Translation(100, 40))
	p := Point2D{X: 300, Y: 200}
	q := tr.Apply(p)
	if q.X != 250 || q.Y != 140 {
		t.Fatalf("Apply = %+v, want {250 140}", q)
	}
	inv, ok := tr.Inverse()
	if !ok {
		t.Fatal("expected invertible transform")
	}
	back := inv.Apply(q)
	if back.Distance(p) > 1e-9 {
		t.Errorf("round trip = %+v, want %+v", back, p)
	}
}

func TestAffineSingular(t *testing.T) {
	if _, ok := Scale(0, 1).Inverse(); ok {
		t.Error("expected singular transform")
	}
}
