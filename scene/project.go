package scene

// Project is the top-level document: an ordered list of layers, one of which
// is active. New content lands in the active layer.
type Project struct {
	layers []*Item
	active *Item
}

// NewProject creates a project with a single empty active layer.
func NewProject() *Project {
	p := &Project{}
	p.AddLayer("layer 1")
	return p
}

// Layers returns the layer list. The returned slice MUST NOT be mutated.
func (p *Project) Layers() []*Item {
	return p.layers
}

// ActiveLayer returns the layer new content is added to. A project always has
// an active layer; one is created if every layer was removed.
func (p *Project) ActiveLayer() *Item {
	if p.active == nil {
		p.AddLayer("layer 1")
	}
	return p.active
}

// AddLayer appends a new layer and makes it active.
func (p *Project) AddLayer(name string) *Item {
	l := NewLayer(name)
	p.layers = append(p.layers, l)
	p.active = l
	return l
}

// ActivateLayer makes l the active layer. No-op if l is not one of the
// project's layers.
func (p *Project) ActivateLayer(l *Item) {
	for _, x := range p.layers {
		if x == l {
			p.active = l
			return
		}
	}
}

// RemoveLayer drops l from the project. If l was active, the topmost
// remaining layer becomes active.
func (p *Project) RemoveLayer(l *Item) {
	for i, x := range p.layers {
		if x != l {
			continue
		}
		copy(p.layers[i:], p.layers[i+1:])
		p.layers[len(p.layers)-1] = nil
		p.layers = p.layers[:len(p.layers)-1]
		if p.active == l {
			p.active = nil
			if n := len(p.layers); n > 0 {
				p.active = p.layers[n-1]
			}
		}
		return
	}
}

// Import inserts item into the active layer and returns it. Imported layers
// are demoted to groups so the project's layer list only changes through
// AddLayer.
func (p *Project) Import(item *Item) *Item {
	if item == nil {
		return nil
	}
	if item.Type == ItemLayer {
		item.Type = ItemGroup
	}
	p.ActiveLayer().AddChild(item)
	return item
}

// Clear removes every item from every layer, keeping the layers.
func (p *Project) Clear() {
	for _, l := range p.layers {
		l.RemoveChildren()
	}
}

// Walk visits every item in every layer depth-first.
func (p *Project) Walk(fn func(*Item) bool) {
	for _, l := range p.layers {
		l.Walk(fn)
	}
}

// CountPathLike returns the number of terminal path-like items in the project.
func (p *Project) CountPathLike() int {
	n := 0
	for _, l := range p.layers {
		l.EachPathLike(func(*Item) { n++ })
	}
	return n
}
