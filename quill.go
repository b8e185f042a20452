package quill

import "github.com/phanxgames/quill/scene"

// EventType identifies a kind of input event delivered to a tool.
type EventType uint8

const (
	EventPointerDown   EventType = iota // a contact began (button pressed, pen or finger down)
	EventPointerMove                    // a contact moved
	EventPointerUp                      // a contact ended
	EventPointerCancel                  // the platform aborted a contact; routed as EventPointerUp
	EventKeyDown                        // a key was pressed
	EventKeyUp                          // a key was released
)

// String returns the DOM-style event name.
func (t EventType) String() string {
	switch t {
	case EventPointerDown:
		return "pointerdown"
	case EventPointerMove:
		return "pointermove"
	case EventPointerUp:
		return "pointerup"
	case EventPointerCancel:
		return "pointercancel"
	case EventKeyDown:
		return "keydown"
	case EventKeyUp:
		return "keyup"
	default:
		return "unknown"
	}
}

// canonical maps a cancel to an up so consumers never see cancellation.
func (t EventType) canonical() EventType {
	if t == EventPointerCancel {
		return EventPointerUp
	}
	return t
}

// PointerKind identifies the device that produced a pointer event.
type PointerKind uint8

const (
	PointerMouse PointerKind = iota // mouse or trackpad
	PointerPen                      // stylus
	PointerTouch                    // finger
)

// String returns the pointerType name tools see.
func (k PointerKind) String() string {
	switch k {
	case PointerPen:
		return "pen"
	case PointerTouch:
		return "touch"
	default:
		return "mouse"
	}
}

// ButtonMask is a bitmask of pressed pointer buttons, using DOM bit values.
type ButtonMask uint8

const (
	ButtonPrimary   ButtonMask = 1 << iota // left button, pen tip, touch contact
	ButtonSecondary                        // right button, pen barrel
	ButtonMiddle                           // middle button
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

func (m KeyModifiers) Shift() bool { return m&ModShift != 0 }
func (m KeyModifiers) Ctrl() bool  { return m&ModCtrl != 0 }
func (m KeyModifiers) Alt() bool   { return m&ModAlt != 0 }
func (m KeyModifiers) Meta() bool  { return m&ModMeta != 0 }

// PointerID identifies one physical contact for its lifetime. Mouse input
// uses 0; touches and pens get ids from the platform adapter.
type PointerID int

// DefaultPressure is reported when the platform has no pressure reading.
const DefaultPressure = 0.5

// PointerEvent is a pointer event in canonical form. Point is in project
// coordinates.
type PointerEvent struct {
	Point     scene.Point
	Pressure  float64
	Buttons   ButtonMask
	PointerID PointerID
	Kind      PointerKind
	TiltX     float64
	TiltY     float64
	// Raw is the platform event, passed through untouched.
	Raw any
}

// KeyEvent is a keyboard event in canonical form.
type KeyEvent struct {
	// Key is the logical key name ("a", "Shift", "Escape").
	Key string
	// Code is the physical key name ("KeyA", "ShiftLeft").
	Code      string
	Modifiers KeyModifiers
	Raw       any
}

// RawPointerEvent is a pointer event as the platform reports it, before
// filtering and coordinate mapping. X and Y are device coordinates.
type RawPointerEvent struct {
	Type        EventType
	X, Y        float64
	Pressure    float64
	HasPressure bool
	Buttons     ButtonMask
	PointerID   PointerID
	Kind        PointerKind
	TiltX       float64
	TiltY       float64
	// Draggable marks events that originate on a draggable element.
	Draggable bool
	Native    any
}

// RawKeyEvent is a keyboard event as the platform reports it.
type RawKeyEvent struct {
	Type      EventType
	Key       string
	Code      string
	Modifiers KeyModifiers
	Native    any
}

// Colors is the current primary and secondary paint.
type Colors struct {
	Primary   scene.Color
	Secondary scene.Color
}
