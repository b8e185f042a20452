package quill

import "github.com/phanxgames/quill/scene"

// CanvasSize is the displayed size of the canvas in device pixels.
type CanvasSize struct {
	Width, Height float64
}

// Canvas is the host drawing surface: where it sits on screen, how large it
// is displayed, which pointers it has captured, and whether it is present at
// all. The platform adapter keeps it current.
type Canvas struct {
	x, y, w, h float64
	attached   bool

	captured map[PointerID]struct{}
	noMenu   bool

	// OnResize fires when the displayed size changes.
	OnResize Signal[CanvasSize]
}

// NewCanvas returns an attached canvas at (x, y) displayed at w x h.
func NewCanvas(x, y, w, h float64) *Canvas {
	return &Canvas{
		x: x, y: y, w: w, h: h,
		attached: true,
		captured: make(map[PointerID]struct{}),
	}
}

// Origin returns the device-space position of the canvas's top-left corner.
func (c *Canvas) Origin() scene.Point {
	return scene.Point{X: c.x, Y: c.y}
}

// Size returns the displayed size.
func (c *Canvas) Size() CanvasSize {
	return CanvasSize{Width: c.w, Height: c.h}
}

// Bounds returns the device-space rectangle the canvas covers.
func (c *Canvas) Bounds() scene.Rect {
	return scene.Rect{X: c.x, Y: c.y, Width: c.w, Height: c.h}
}

// SetBounds moves and resizes the canvas. OnResize fires only when the size
// changes.
func (c *Canvas) SetBounds(x, y, w, h float64) {
	c.x, c.y = x, y
	if w == c.w && h == c.h {
		return
	}
	c.w, c.h = w, h
	c.OnResize.Emit(CanvasSize{Width: w, Height: h})
}

// ToCanvas converts device coordinates to canvas-relative coordinates.
func (c *Canvas) ToCanvas(x, y float64) (float64, float64) {
	return x - c.x, y - c.y
}

// Attached reports whether the canvas is present in the host.
func (c *Canvas) Attached() bool {
	return c != nil && c.attached
}

// Detach marks the canvas as removed from the host. Overlays cannot be
// created on, or trace from, a detached canvas.
func (c *Canvas) Detach() {
	c.attached = false
	clear(c.captured)
}

// Attach marks the canvas as present again.
func (c *Canvas) Attach() {
	c.attached = true
}

// CapturePointer keeps routing id's events to the canvas even when the
// pointer leaves it or passes over other UI.
func (c *Canvas) CapturePointer(id PointerID) {
	c.captured[id] = struct{}{}
}

// ReleasePointer ends a capture started by CapturePointer.
func (c *Canvas) ReleasePointer(id PointerID) {
	delete(c.captured, id)
}

// HasCapture reports whether id is captured.
func (c *Canvas) HasCapture(id PointerID) bool {
	_, ok := c.captured[id]
	return ok
}

// SuppressContextMenu disables the host's context menu over the canvas.
func (c *Canvas) SuppressContextMenu() {
	c.noMenu = true
}

// ContextMenuSuppressed reports whether SuppressContextMenu was called.
func (c *Canvas) ContextMenuSuppressed() bool {
	return c.noMenu
}

// RequestContextMenu is called by the platform adapter when the host would
// open its context menu. It returns false when the menu is suppressed.
func (c *Canvas) RequestContextMenu() bool {
	return !c.noMenu
}
