package scene

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestNewViewIsIdentity(t *testing.T) {
	v := NewView(800, 600)
	x, y := v.ViewToProject(123, 456)
	if !approxEqual(x, 123, epsilon) || !approxEqual(y, 456, epsilon) {
		t.Errorf("ViewToProject(123,456) = (%v,%v), want (123,456)", x, y)
	}
}

func TestViewZoom(t *testing.T) {
	v := NewView(800, 600)
	v.SetZoom(2)
	// The viewport centre stays on (400, 300); one view pixel is half a unit.
	x, y := v.ViewToProject(402, 300)
	if !approxEqual(x, 401, epsilon) || !approxEqual(y, 300, epsilon) {
		t.Errorf("ViewToProject(402,300) at zoom 2 = (%v,%v), want (401,300)", x, y)
	}
}

func TestViewRoundTrip(t *testing.T) {
	v := NewView(640, 480)
	v.SetZoom(3.5)
	v.Pan(-40, 25)
	px, py := v.ViewToProject(17, 99)
	sx, sy := v.ProjectToView(px, py)
	if !approxEqual(sx, 17, 1e-6) || !approxEqual(sy, 99, 1e-6) {
		t.Errorf("round trip = (%v,%v), want (17,99)", sx, sy)
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	v := NewView(800, 600)
	before := Point{}
	before.X, before.Y = v.ViewToProject(100, 100)
	v.ZoomAt(2, 100, 100)
	ax, ay := v.ViewToProject(100, 100)
	if !approxEqual(ax, before.X, 1e-6) || !approxEqual(ay, before.Y, 1e-6) {
		t.Errorf("anchor moved from %v to (%v,%v)", before, ax, ay)
	}
}

func TestSetZoomClamps(t *testing.T) {
	v := NewView(100, 100)
	v.SetZoom(0)
	if v.Zoom != minZoom {
		t.Errorf("Zoom = %v, want %v", v.Zoom, minZoom)
	}
	v.SetZoom(1e6)
	if v.Zoom != maxZoom {
		t.Errorf("Zoom = %v, want %v", v.Zoom, maxZoom)
	}
}

func TestScrollToCompletes(t *testing.T) {
	v := NewView(800, 600)
	v.ScrollTo(Point{100, 200}, 1.0, ease.Linear)
	if !v.Animating() {
		t.Fatal("should be animating after ScrollTo")
	}
	for i := 0; i < 70; i++ {
		v.Update(1.0 / 60.0)
	}
	if v.Animating() {
		t.Error("animation should be finished")
	}
	if !approxEqual(v.Center.X, 100, 0.01) || !approxEqual(v.Center.Y, 200, 0.01) {
		t.Errorf("Center = %v, want (100,200)", v.Center)
	}
}

func TestZoomToCompletes(t *testing.T) {
	v := NewView(800, 600)
	v.ZoomTo(4, 0.5, ease.Linear)
	for i := 0; i < 40; i++ {
		v.Update(1.0 / 60.0)
	}
	if !approxEqual(v.Zoom, 4, 0.01) {
		t.Errorf("Zoom = %v, want 4", v.Zoom)
	}
}
