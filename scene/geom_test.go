package scene

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	m := Scaling(2, 3, Point{10, 20}).Multiply(Translation(5, -7))
	inv := m.Invert()
	p := Point{42, -13}
	q := inv.Apply(m.Apply(p))
	if !approxEqual(q.X, p.X, epsilon) || !approxEqual(q.Y, p.Y, epsilon) {
		t.Errorf("inverse round trip = %v, want %v", q, p)
	}
}

func TestMatrixInvertSingular(t *testing.T) {
	m := Matrix{0, 0, 0, 0, 3, 4}
	if got := m.Invert(); got != Identity {
		t.Errorf("Invert(singular) = %v, want identity", got)
	}
}

func TestScalingKeepsCenterFixed(t *testing.T) {
	c := Point{50, 80}
	got := Scaling(4, 4, c).Apply(c)
	if got != c {
		t.Errorf("Scaling center moved to %v, want %v", got, c)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"outside left", 5, 40, false},
		{"outside bottom", 50, 75, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Rect.Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestColorRGBAPremultiplies(t *testing.T) {
	r, g, b, a := Color{R: 1, G: 0.5, B: 0, A: 0.5}.RGBA()
	if a != 0x7fff {
		t.Errorf("a = %#x, want 0x7fff", a)
	}
	if r != 0x7fff || b != 0 {
		t.Errorf("r, b = %#x, %#x, want 0x7fff, 0", r, b)
	}
	if g >= r {
		t.Errorf("g = %#x should be below r = %#x", g, r)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#000", Color{0, 0, 0, 1}},
		{"#ff0000", Color{1, 0, 0, 1}},
		{"00ff0080", Color{0, 1, 0, 128.0 / 255}},
		{" #fff ", Color{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if err != nil {
				t.Fatalf("ParseHexColor(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "#12", "#gggggg", "#1234567"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Errorf("ParseHexColor(%q) succeeded, want error", bad)
		}
	}
}

func TestColorHex(t *testing.T) {
	if got := (Color{1, 0.5, 0, 1}).Hex(); got != "#ff8000ff" {
		t.Errorf("Hex() = %q, want %q", got, "#ff8000ff")
	}
}
