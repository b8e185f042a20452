package scene

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// whiteSubImage is the 1x1 source used for solid-color triangles. Sampling
// the centre pixel of a 3x3 image avoids bleeding at the edges.
var whiteSubImage *ebiten.Image

func init() {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// renderer holds reusable vertex buffers across frames.
type renderer struct {
	vertices []ebiten.Vertex
	indices  []uint16
}

// Draw renders every visible layer of p onto dst through the view.
func (v *View) Draw(dst *ebiten.Image, p *Project) {
	if v.r == nil {
		v.r = &renderer{}
	}
	m := v.computeMatrix()
	for _, l := range p.Layers() {
		if !l.Visible {
			continue
		}
		l.Walk(func(it *Item) bool {
			if !it.Visible {
				return false
			}
			if it.IsPathLike() {
				v.r.drawShape(dst, it, m)
				return false
			}
			return true
		})
	}
}

// drawShape fills then strokes a path or compound path.
func (r *renderer) drawShape(dst *ebiten.Image, it *Item, m Matrix) {
	var path vector.Path
	rings := 0
	if it.Type == ItemCompoundPath {
		for _, c := range it.children {
			if appendRing(&path, c.Segments, true, m) {
				rings++
			}
		}
	} else if appendRing(&path, it.Segments, it.Closed, m) {
		rings++
	}
	if rings == 0 {
		return
	}

	if it.FillColor != nil {
		r.vertices, r.indices = path.AppendVerticesAndIndicesForFilling(r.vertices[:0], r.indices[:0])
		r.submit(dst, *it.FillColor, ebiten.FillRuleEvenOdd)
	}
	if it.StrokeColor != nil && it.StrokeWidth > 0 {
		r.vertices, r.indices = path.AppendVerticesAndIndicesForStroke(r.vertices[:0], r.indices[:0], &vector.StrokeOptions{
			Width:    float32(it.StrokeWidth * m[0]),
			LineJoin: vector.LineJoinRound,
			LineCap:  vector.LineCapRound,
		})
		r.submit(dst, *it.StrokeColor, ebiten.FillRuleFillAll)
	}
}

// appendRing adds one polyline to path in view space. Returns false for
// rings too short to draw.
func appendRing(path *vector.Path, pts []Point, closed bool, m Matrix) bool {
	if len(pts) < 2 {
		return false
	}
	p := m.Apply(pts[0])
	path.MoveTo(float32(p.X), float32(p.Y))
	for _, q := range pts[1:] {
		p = m.Apply(q)
		path.LineTo(float32(p.X), float32(p.Y))
	}
	if closed {
		path.Close()
	}
	return true
}

func (r *renderer) submit(dst *ebiten.Image, c Color, rule ebiten.FillRule) {
	a := float32(clamp01(c.A))
	cr, cg, cb := float32(clamp01(c.R))*a, float32(clamp01(c.G))*a, float32(clamp01(c.B))*a
	for i := range r.vertices {
		r.vertices[i].SrcX = 1
		r.vertices[i].SrcY = 1
		r.vertices[i].ColorR = cr
		r.vertices[i].ColorG = cg
		r.vertices[i].ColorB = cb
		r.vertices[i].ColorA = a
	}
	dst.DrawTriangles(r.vertices, r.indices, whiteSubImage, &ebiten.DrawTrianglesOptions{
		FillRule:       rule,
		AntiAlias:      true,
		ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha,
	})
}
