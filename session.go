package quill

// SessionTracker accumulates the events of each in-flight pointer contact,
// from its down event through its terminal up event.
type SessionTracker struct {
	sessions map[PointerID][]PointerEvent
}

// NewSessionTracker returns an empty tracker.
func NewSessionTracker() *SessionTracker {
	return &SessionTracker{sessions: make(map[PointerID][]PointerEvent)}
}

// Start begins a session for ev.PointerID. An existing session for the same
// id is discarded.
func (t *SessionTracker) Start(ev PointerEvent) {
	t.sessions[ev.PointerID] = []PointerEvent{ev}
}

// Move appends ev to its pointer's session. Events for pointers without a
// session are dropped.
func (t *SessionTracker) Move(ev PointerEvent) {
	s, ok := t.sessions[ev.PointerID]
	if !ok {
		return
	}
	t.sessions[ev.PointerID] = append(s, ev)
}

// End appends the terminal event, forgets the session and hands it to the
// caller. ok is false when no session existed.
func (t *SessionTracker) End(ev PointerEvent) (session []PointerEvent, ok bool) {
	s, ok := t.sessions[ev.PointerID]
	if !ok {
		return nil, false
	}
	delete(t.sessions, ev.PointerID)
	return append(s, ev), true
}

// Get returns a copy of the in-progress session for id.
func (t *SessionTracker) Get(id PointerID) ([]PointerEvent, bool) {
	s, ok := t.sessions[id]
	if !ok {
		return nil, false
	}
	out := make([]PointerEvent, len(s))
	copy(out, s)
	return out, true
}

// Len returns the number of live sessions.
func (t *SessionTracker) Len() int {
	return len(t.sessions)
}
