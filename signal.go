package quill

// remover is implemented by registries that hand out CallbackHandles.
type remover interface {
	remove(id uint32)
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id  uint32
	reg remover
}

// Remove unregisters the callback so it no longer fires. Safe to call more
// than once and on the zero handle.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	h.reg.remove(h.id)
}

type handler[T any] struct {
	id uint32
	fn func(T)
}

// Signal is a list of observers notified in connection order.
// The zero value is ready to use.
type Signal[T any] struct {
	handlers []handler[T]
	nextID   uint32
}

// Connect registers fn and returns a handle that disconnects it.
func (s *Signal[T]) Connect(fn func(T)) CallbackHandle {
	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, handler[T]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: s}
}

// Emit calls every connected observer with v. Observers connected or removed
// during Emit take effect from the next Emit.
func (s *Signal[T]) Emit(v T) {
	hs := s.handlers
	for _, h := range hs {
		h.fn(v)
	}
}

// Len returns the number of connected observers.
func (s *Signal[T]) Len() int {
	return len(s.handlers)
}

func (s *Signal[T]) remove(id uint32) {
	for i := range s.handlers {
		if s.handlers[i].id == id {
			// Copy so an Emit in progress keeps iterating its own slice.
			hs := make([]handler[T], 0, len(s.handlers)-1)
			hs = append(hs, s.handlers[:i]...)
			s.handlers = append(hs, s.handlers[i+1:]...)
			return
		}
	}
}
