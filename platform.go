package quill

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// touchPointerBase offsets touch ids so they never collide with the mouse (0).
const touchPointerBase = 1

type touchState struct {
	x, y float64
}

// ebitenInput polls ebiten once per frame and turns state changes into raw
// events.
type ebitenInput struct {
	mouseDown    bool
	lastX, lastY float64

	touches      map[ebiten.TouchID]touchState
	prevTouchIDs []ebiten.TouchID
	keys         []ebiten.Key
}

func newEbitenInput() *ebitenInput {
	return &ebitenInput{touches: make(map[ebiten.TouchID]touchState)}
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

func (in *ebitenInput) poll(r *Router) {
	mods := readModifiers()
	in.pollMouse(r)
	in.pollTouches(r)
	in.pollKeys(r, mods)
}

// pollMouse handles the mouse as pointer 0. A contact lasts from the first
// button pressed until every button is released.
func (in *ebitenInput) pollMouse(r *Router) {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	var buttons ButtonMask
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		buttons |= ButtonPrimary
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		buttons |= ButtonSecondary
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		buttons |= ButtonMiddle
	}
	pressed := buttons != 0

	ev := RawPointerEvent{X: x, Y: y, Buttons: buttons, PointerID: 0, Kind: PointerMouse}
	switch {
	case pressed && !in.mouseDown:
		in.mouseDown = true
		ev.Type = EventPointerDown
		r.HandlePointer(ev)
	case !pressed && in.mouseDown:
		in.mouseDown = false
		ev.Type = EventPointerUp
		ev.Buttons = 0
		r.HandlePointer(ev)
	case x != in.lastX || y != in.lastY:
		ev.Type = EventPointerMove
		r.HandlePointer(ev)
	}
	in.lastX, in.lastY = x, y
}

// pollTouches reports new, moved and lifted touches. A touch that vanishes is
// reported as a cancel at its last position.
func (in *ebitenInput) pollTouches(r *Router) {
	ids := ebiten.AppendTouchIDs(in.prevTouchIDs[:0])
	in.prevTouchIDs = ids

	seen := make(map[ebiten.TouchID]bool, len(ids))
	for _, tid := range ids {
		seen[tid] = true
		tx, ty := ebiten.TouchPosition(tid)
		x, y := float64(tx), float64(ty)
		ev := RawPointerEvent{
			X: x, Y: y,
			Buttons:   ButtonPrimary,
			PointerID: PointerID(touchPointerBase + int(tid)),
			Kind:      PointerTouch,
		}
		prev, live := in.touches[tid]
		switch {
		case !live:
			ev.Type = EventPointerDown
			r.HandlePointer(ev)
		case prev.x != x || prev.y != y:
			ev.Type = EventPointerMove
			r.HandlePointer(ev)
		}
		in.touches[tid] = touchState{x: x, y: y}
	}

	for tid, st := range in.touches {
		if seen[tid] {
			continue
		}
		typ := EventPointerCancel
		if inpututil.IsTouchJustReleased(tid) {
			typ = EventPointerUp
		}
		r.HandlePointer(RawPointerEvent{
			Type: typ,
			X:    st.x, Y: st.y,
			PointerID: PointerID(touchPointerBase + int(tid)),
			Kind:      PointerTouch,
		})
		delete(in.touches, tid)
	}
}

func (in *ebitenInput) pollKeys(r *Router, mods KeyModifiers) {
	in.keys = inpututil.AppendJustPressedKeys(in.keys[:0])
	for _, k := range in.keys {
		key, code := keyNames(k, mods)
		r.HandleKey(RawKeyEvent{Type: EventKeyDown, Key: key, Code: code, Modifiers: mods, Native: k})
	}
	in.keys = inpututil.AppendJustReleasedKeys(in.keys[:0])
	for _, k := range in.keys {
		key, code := keyNames(k, mods)
		r.HandleKey(RawKeyEvent{Type: EventKeyUp, Key: key, Code: code, Modifiers: mods, Native: k})
	}
}

// keyNames derives DOM-style key and code names from an ebiten key.
func keyNames(k ebiten.Key, mods KeyModifiers) (key, code string) {
	name := k.String()
	switch {
	case len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z':
		if mods.Shift() {
			return name, "Key" + name
		}
		return strings.ToLower(name), "Key" + name
	case strings.HasPrefix(name, "Digit") && len(name) == 6:
		return name[5:], name
	case name == "Space":
		return " ", name
	}
	return name, name
}
