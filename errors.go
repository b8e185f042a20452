package quill

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an error surfaced on the error channel.
type ErrorKind uint8

const (
	KindValidation ErrorKind = iota // malformed input, e.g. a tool without a name
	KindActivation                  // unknown tool name
	KindHandler                     // a tool callback failed or panicked
	KindLoad                        // tool source failed to compile or run
	KindTrace                       // overlay or tracer failure
)

// String returns the lower-case kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindActivation:
		return "activation"
	case KindHandler:
		return "handler"
	case KindLoad:
		return "load"
	case KindTrace:
		return "trace"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyName         = errors.New("tool name is empty")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrCanvasMissing     = errors.New("canvas not found")
	ErrTracerNotReady    = errors.New("tracer not initialized")
	ErrOverlayNotCreated = errors.New("overlay not created")
	ErrStaleOverlay      = errors.New("overlay changed while tracing")
	ErrHandlerPanic      = errors.New("handler panicked")
	ErrToolTimeout       = errors.New("tool exceeded its time budget")
)

// Error is the error type reported by the tool host, loader and overlay.
type Error struct {
	Kind ErrorKind
	// Op is the operation that failed ("register", "pointerdown", "load", ...).
	Op string
	// Tool is the tool involved, if any.
	Tool string
	Err  error
}

func (e *Error) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("quill: %s %s %q: %v", e.Kind, e.Op, e.Tool, e.Err)
	}
	return fmt.Sprintf("quill: %s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind, true
	}
	return 0, false
}
