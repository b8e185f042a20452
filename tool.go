package quill

// Tool is a named bundle of optional handlers. Any subset of handlers may be
// set; nil handlers are no-ops. A handler that returns an error or panics
// only loses the event it was handling.
type Tool struct {
	// Name is the registry key. Must be non-empty.
	Name string

	OnActivate   func() error
	OnDeactivate func() error

	OnPointerDown func(PointerEvent) error
	OnPointerMove func(PointerEvent) error
	OnPointerUp   func(PointerEvent) error

	OnKeyDown func(KeyEvent) error
	OnKeyUp   func(KeyEvent) error

	// OnColorChange is the optional color-change capability.
	OnColorChange func(Colors) error
}

// pointerHandler returns the handler for a pointer event type, or nil.
func (t *Tool) pointerHandler(typ EventType) func(PointerEvent) error {
	switch typ.canonical() {
	case EventPointerDown:
		return t.OnPointerDown
	case EventPointerMove:
		return t.OnPointerMove
	case EventPointerUp:
		return t.OnPointerUp
	}
	return nil
}

// keyHandler returns the handler for a key event type, or nil.
func (t *Tool) keyHandler(typ EventType) func(KeyEvent) error {
	switch typ {
	case EventKeyDown:
		return t.OnKeyDown
	case EventKeyUp:
		return t.OnKeyUp
	}
	return nil
}
