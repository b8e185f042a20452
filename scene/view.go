package scene

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	minZoom = 0.05
	maxZoom = 64.0
)

// viewAnim holds active tweens for animated view changes.
type viewAnim struct {
	tweenX, tweenY, tweenZoom *gween.Tween
	doneX, doneY, doneZoom    bool
}

// View maps between view space (canvas pixels, origin top-left) and project
// space, and renders a project. The two spaces differ under zoom and pan.
type View struct {
	// Center is the project-space point shown at the middle of the viewport.
	Center Point
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Width and Height are the viewport size in view-space pixels.
	Width, Height float64

	matrix    Matrix
	invMatrix Matrix
	dirty     bool

	anim *viewAnim
	r    *renderer
}

// NewView creates a view of the given size. Initially view and project space
// coincide: the center is (width/2, height/2) and zoom is 1.
func NewView(width, height float64) *View {
	return &View{
		Center: Point{width / 2, height / 2},
		Zoom:   1,
		Width:  width,
		Height: height,
		dirty:  true,
	}
}

// SetViewSize resizes the viewport, keeping the project point at its center.
func (v *View) SetViewSize(width, height float64) {
	v.Width, v.Height = width, height
	v.dirty = true
}

// SetCenter pans so p is at the middle of the viewport.
func (v *View) SetCenter(p Point) {
	v.Center = p
	v.dirty = true
}

// SetZoom sets the zoom factor, clamped to a sane range.
func (v *View) SetZoom(z float64) {
	v.Zoom = math.Max(minZoom, math.Min(z, maxZoom))
	v.dirty = true
}

// Pan scrolls the view by (dx, dy) view-space pixels.
func (v *View) Pan(dx, dy float64) {
	v.Center.X -= dx / v.Zoom
	v.Center.Y -= dy / v.Zoom
	v.dirty = true
}

// ZoomAt multiplies the zoom by factor keeping the project point under the
// view-space anchor (ax, ay) fixed.
func (v *View) ZoomAt(factor, ax, ay float64) {
	px, py := v.ViewToProject(ax, ay)
	v.SetZoom(v.Zoom * factor)
	v.computeMatrix()
	nx, ny := v.ViewToProject(ax, ay)
	v.Center.X += px - nx
	v.Center.Y += py - ny
	v.dirty = true
}

// ScrollTo animates the center to p over duration seconds.
func (v *View) ScrollTo(p Point, duration float32, easeFn ease.TweenFunc) {
	a := v.ensureAnim()
	a.tweenX = gween.New(float32(v.Center.X), float32(p.X), duration, easeFn)
	a.tweenY = gween.New(float32(v.Center.Y), float32(p.Y), duration, easeFn)
	a.doneX, a.doneY = false, false
}

// ZoomTo animates the zoom factor to z over duration seconds.
func (v *View) ZoomTo(z float32, duration float32, easeFn ease.TweenFunc) {
	a := v.ensureAnim()
	a.tweenZoom = gween.New(float32(v.Zoom), z, duration, easeFn)
	a.doneZoom = false
}

// Animating reports whether a ScrollTo or ZoomTo is in progress.
func (v *View) Animating() bool {
	return v.anim != nil
}

func (v *View) ensureAnim() *viewAnim {
	if v.anim == nil {
		v.anim = &viewAnim{doneX: true, doneY: true, doneZoom: true}
	}
	return v.anim
}

// Update advances view animations by dt seconds.
func (v *View) Update(dt float32) {
	a := v.anim
	if a == nil {
		return
	}
	if !a.doneX && a.tweenX != nil {
		val, done := a.tweenX.Update(dt)
		v.Center.X = float64(val)
		a.doneX = done
	}
	if !a.doneY && a.tweenY != nil {
		val, done := a.tweenY.Update(dt)
		v.Center.Y = float64(val)
		a.doneY = done
	}
	if !a.doneZoom && a.tweenZoom != nil {
		val, done := a.tweenZoom.Update(dt)
		v.SetZoom(float64(val))
		a.doneZoom = done
	}
	v.dirty = true
	if a.doneX && a.doneY && a.doneZoom {
		v.anim = nil
	}
}

// computeMatrix recomputes the cached view matrix if dirty.
//
// matrix = Translate(w/2, h/2) * Scale(zoom) * Translate(-Center)
func (v *View) computeMatrix() Matrix {
	if !v.dirty {
		return v.matrix
	}
	v.dirty = false
	z := v.Zoom
	v.matrix = Matrix{z, 0, 0, z, v.Width/2 - z*v.Center.X, v.Height/2 - z*v.Center.Y}
	v.invMatrix = v.matrix.Invert()
	return v.matrix
}

// Matrix returns the project-to-view matrix.
func (v *View) Matrix() Matrix {
	return v.computeMatrix()
}

// ViewToProject converts view-space coordinates to project coordinates.
func (v *View) ViewToProject(x, y float64) (float64, float64) {
	v.computeMatrix()
	p := v.invMatrix.Apply(Point{x, y})
	return p.X, p.Y
}

// ProjectToView converts project coordinates to view-space coordinates.
func (v *View) ProjectToView(x, y float64) (float64, float64) {
	p := v.computeMatrix().Apply(Point{x, y})
	return p.X, p.Y
}

// VisibleBounds returns the project-space rectangle covered by the viewport.
func (v *View) VisibleBounds() Rect {
	x0, y0 := v.ViewToProject(0, 0)
	x1, y1 := v.ViewToProject(v.Width, v.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
