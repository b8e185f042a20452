package scene

import (
	"math"

	"github.com/google/uuid"
)

// ItemType distinguishes the role an Item plays in the tree.
type ItemType uint8

const (
	ItemLayer        ItemType = iota // top-level container owned by a Project
	ItemGroup                        // plain container
	ItemPath                         // polyline or polygon with paint
	ItemCompoundPath                 // set of paths filled together (holes)
)

// String returns the lower-case type name.
func (t ItemType) String() string {
	switch t {
	case ItemLayer:
		return "layer"
	case ItemGroup:
		return "group"
	case ItemPath:
		return "path"
	case ItemCompoundPath:
		return "compound-path"
	default:
		return "unknown"
	}
}

const defaultStrokeWidth = 1.0

// Item is the scene graph element. A single flat struct is used for all item
// types; Segments and paint are only meaningful for path-like items.
type Item struct {
	// Identity
	ID   string
	Name string
	Type ItemType

	// Hierarchy
	Parent   *Item
	children []*Item

	// Geometry (paths only), in project space.
	Segments []Point
	Closed   bool

	// Paint. Nil means no stroke / no fill.
	StrokeColor *Color
	FillColor   *Color
	StrokeWidth float64

	Visible bool
}

func newItem(name string, t ItemType) *Item {
	return &Item{
		ID:          uuid.NewString(),
		Name:        name,
		Type:        t,
		StrokeWidth: defaultStrokeWidth,
		Visible:     true,
	}
}

// NewLayer creates an empty layer. Add it to a Project with Project.AddLayer.
func NewLayer(name string) *Item {
	return newItem(name, ItemLayer)
}

// NewGroup creates a group containing children.
func NewGroup(children ...*Item) *Item {
	g := newItem("", ItemGroup)
	for _, c := range children {
		g.AddChild(c)
	}
	return g
}

// NewPath creates an open path through points.
func NewPath(points ...Point) *Item {
	p := newItem("", ItemPath)
	p.Segments = append(p.Segments, points...)
	return p
}

// NewCompoundPath creates a compound path from child paths.
func NewCompoundPath(paths ...*Item) *Item {
	c := newItem("", ItemCompoundPath)
	for _, p := range paths {
		c.AddChild(p)
	}
	return c
}

// --- Tree manipulation ---

// AddChild appends child to this item's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or the move would create a cycle.
func (it *Item) AddChild(child *Item) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if isAncestor(child, it) {
		panic("scene: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = it
	it.children = append(it.children, child)
}

// RemoveChild detaches child from this item. No-op if child is not a child of it.
func (it *Item) RemoveChild(child *Item) {
	if child == nil || child.Parent != it {
		return
	}
	it.removeChildByPtr(child)
	child.Parent = nil
}

// Remove detaches this item from its parent.
func (it *Item) Remove() {
	if it.Parent != nil {
		it.Parent.RemoveChild(it)
	}
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (it *Item) Children() []*Item {
	return it.children
}

// NumChildren returns the number of children.
func (it *Item) NumChildren() int {
	return len(it.children)
}

// RemoveChildren detaches all children.
func (it *Item) RemoveChildren() {
	for _, c := range it.children {
		c.Parent = nil
	}
	clear(it.children)
	it.children = it.children[:0]
}

func isAncestor(candidate, item *Item) bool {
	for p := item; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from it.children without clearing child.Parent.
func (it *Item) removeChildByPtr(child *Item) {
	for i, c := range it.children {
		if c == child {
			copy(it.children[i:], it.children[i+1:])
			it.children[len(it.children)-1] = nil
			it.children = it.children[:len(it.children)-1]
			return
		}
	}
}

// --- Paths ---

// IsPathLike reports whether the item is a terminal painted shape: a path or a
// compound path. Compound paths are terminal because their rings fill together.
func (it *Item) IsPathLike() bool {
	return it.Type == ItemPath || it.Type == ItemCompoundPath
}

// Add appends a segment to a path.
func (it *Item) Add(p Point) {
	it.Segments = append(it.Segments, p)
}

// Close marks the path as closed.
func (it *Item) Close() {
	it.Closed = true
}

// LastSegment returns the final point of a path, if any.
func (it *Item) LastSegment() (Point, bool) {
	if len(it.Segments) == 0 {
		return Point{}, false
	}
	return it.Segments[len(it.Segments)-1], true
}

// SetStrokeColor sets the stroke paint.
func (it *Item) SetStrokeColor(c Color) {
	it.StrokeColor = &c
}

// SetFillColor sets the fill paint.
func (it *Item) SetFillColor(c Color) {
	it.FillColor = &c
}

// ClearFill removes the fill paint.
func (it *Item) ClearFill() {
	it.FillColor = nil
}

// SetStrokeWidth sets the stroke width in project units.
func (it *Item) SetStrokeWidth(w float64) {
	it.StrokeWidth = w
}

// Simplify removes segments that deviate less than tolerance from the line
// between their neighbours (Ramer-Douglas-Peucker). Closed paths keep their
// first point.
func (it *Item) Simplify(tolerance float64) {
	if len(it.Segments) < 3 || tolerance <= 0 {
		return
	}
	keep := make([]bool, len(it.Segments))
	keep[0], keep[len(keep)-1] = true, true
	rdp(it.Segments, 0, len(it.Segments)-1, tolerance, keep)
	out := it.Segments[:0]
	for i, p := range it.Segments {
		if keep[i] {
			out = append(out, p)
		}
	}
	it.Segments = out
}

func rdp(pts []Point, first, last int, tol float64, keep []bool) {
	if last-first < 2 {
		return
	}
	a, b := pts[first], pts[last]
	maxDist, index := 0.0, -1
	for i := first + 1; i < last; i++ {
		if d := segmentDistance(pts[i], a, b); d > maxDist {
			maxDist, index = d, i
		}
	}
	if index < 0 || maxDist <= tol {
		return
	}
	keep[index] = true
	rdp(pts, first, index, tol, keep)
	rdp(pts, index, last, tol, keep)
}

// segmentDistance returns the distance from p to segment ab.
func segmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Distance(Point{a.X + t*dx, a.Y + t*dy})
}

// --- Traversal and transforms ---

// Walk visits it and its descendants depth-first. Returning false from fn
// skips the visited item's subtree.
func (it *Item) Walk(fn func(*Item) bool) {
	if !fn(it) {
		return
	}
	for _, c := range it.children {
		c.Walk(fn)
	}
}

// EachPathLike calls fn for every terminal path-like item in the subtree,
// recursing through layers and groups only.
func (it *Item) EachPathLike(fn func(*Item)) {
	it.Walk(func(n *Item) bool {
		if n.IsPathLike() {
			fn(n)
			return false
		}
		return true
	})
}

// Transform applies m to every segment in the subtree.
func (it *Item) Transform(m Matrix) {
	it.Walk(func(n *Item) bool {
		for i, p := range n.Segments {
			n.Segments[i] = m.Apply(p)
		}
		return true
	})
}

// Scale scales the subtree's geometry by (sx, sy) anchored at center.
func (it *Item) Scale(sx, sy float64, center Point) {
	it.Transform(Scaling(sx, sy, center))
}

// Translate moves the subtree's geometry by (dx, dy).
func (it *Item) Translate(dx, dy float64) {
	it.Transform(Translation(dx, dy))
}

// Bounds returns the bounding rectangle of all segments in the subtree.
// ok is false when the subtree has no geometry.
func (it *Item) Bounds() (r Rect, ok bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	it.Walk(func(n *Item) bool {
		for _, p := range n.Segments {
			minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
			maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
		return true
	})
	if math.IsInf(minX, 1) {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}
