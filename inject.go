package quill

// injectedEvent is a queued synthetic pointer or key event. Exactly one of
// pointer and key is set.
type injectedEvent struct {
	pointer *RawPointerEvent
	key     *RawKeyEvent
}

// syntheticPointer builds a mouse event at device coordinates (x, y).
func syntheticPointer(typ EventType, x, y float64) *RawPointerEvent {
	ev := &RawPointerEvent{Type: typ, X: x, Y: y, Kind: PointerMouse}
	if typ != EventPointerUp {
		ev.Buttons = ButtonPrimary
	}
	return ev
}

// InjectPress queues a primary-button press at device coordinates (x, y).
// Queued events are routed one per frame, or all at once by Flush.
func (r *Router) InjectPress(x, y float64) {
	r.injectQueue = append(r.injectQueue, injectedEvent{pointer: syntheticPointer(EventPointerDown, x, y)})
}

// InjectMove queues a pointer move with the primary button held. Use this
// between InjectPress and InjectRelease to simulate a stroke.
func (r *Router) InjectMove(x, y float64) {
	r.injectQueue = append(r.injectQueue, injectedEvent{pointer: syntheticPointer(EventPointerMove, x, y)})
}

// InjectRelease queues a pointer release at (x, y).
func (r *Router) InjectRelease(x, y float64) {
	r.injectQueue = append(r.injectQueue, injectedEvent{pointer: syntheticPointer(EventPointerUp, x, y)})
}

// InjectClick queues a press followed by a release at the same coordinates.
func (r *Router) InjectClick(x, y float64) {
	r.InjectPress(x, y)
	r.InjectRelease(x, y)
}

// InjectDrag queues a full stroke: press at (fromX, fromY), frames-2
// linearly interpolated moves, and release at (toX, toY). Minimum frames is
// 2 (press + release).
func (r *Router) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	r.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		r.InjectMove(x, y)
	}
	r.InjectRelease(toX, toY)
}

// InjectKey queues a key press and release.
func (r *Router) InjectKey(key, code string, mods KeyModifiers) {
	r.injectQueue = append(r.injectQueue,
		injectedEvent{key: &RawKeyEvent{Type: EventKeyDown, Key: key, Code: code, Modifiers: mods}},
		injectedEvent{key: &RawKeyEvent{Type: EventKeyUp, Key: key, Code: code, Modifiers: mods}},
	)
}

// Injecting reports whether synthetic events are queued.
func (r *Router) Injecting() bool {
	return len(r.injectQueue) > 0
}

// processInjected routes the oldest queued event. Returns true if an event
// was consumed (real pointer input should be skipped this frame).
func (r *Router) processInjected() bool {
	if len(r.injectQueue) == 0 {
		return false
	}
	ev := r.injectQueue[0]
	copy(r.injectQueue, r.injectQueue[1:])
	r.injectQueue[len(r.injectQueue)-1] = injectedEvent{}
	r.injectQueue = r.injectQueue[:len(r.injectQueue)-1]

	if ev.pointer != nil {
		r.HandlePointer(*ev.pointer)
	} else if ev.key != nil {
		r.HandleKey(*ev.key)
	}
	return true
}

// Flush routes every queued synthetic event immediately.
func (r *Router) Flush() {
	for r.processInjected() {
	}
}
