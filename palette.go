package quill

import "github.com/phanxgames/quill/scene"

// Palette is the color provider: primary and secondary paint plus change
// notification.
type Palette struct {
	colors Colors
	// OnChange fires after either color changes.
	OnChange Signal[Colors]
}

// NewPalette returns a palette with the given colors.
func NewPalette(primary, secondary scene.Color) *Palette {
	return &Palette{colors: Colors{Primary: primary, Secondary: secondary}}
}

// Colors returns the current colors.
func (p *Palette) Colors() Colors {
	return p.colors
}

// Primary returns the stroke color.
func (p *Palette) Primary() scene.Color {
	return p.colors.Primary
}

// Secondary returns the fill color.
func (p *Palette) Secondary() scene.Color {
	return p.colors.Secondary
}

// SetPrimary changes the primary color and notifies observers.
func (p *Palette) SetPrimary(c scene.Color) {
	p.Set(Colors{Primary: c, Secondary: p.colors.Secondary})
}

// SetSecondary changes the secondary color and notifies observers.
func (p *Palette) SetSecondary(c scene.Color) {
	p.Set(Colors{Primary: p.colors.Primary, Secondary: c})
}

// Swap exchanges primary and secondary.
func (p *Palette) Swap() {
	p.Set(Colors{Primary: p.colors.Secondary, Secondary: p.colors.Primary})
}

// Set replaces both colors. Observers are not notified when nothing changed.
func (p *Palette) Set(c Colors) {
	if c == p.colors {
		return
	}
	p.colors = c
	p.OnChange.Emit(c)
}
