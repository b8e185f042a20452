package quill

import (
	"errors"
	"reflect"
	"testing"
)

func TestActivateUnknownTool(t *testing.T) {
	h := NewToolHost(nil)
	errs := collectErrors(h)
	rec := &recorder{}
	_ = h.Register(rec.tool("a"))
	_ = h.Activate("a")

	err := h.Activate("missing")
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("Activate(missing) = %v, want ErrUnknownTool", err)
	}
	if k, _ := KindOf(err); k != KindActivation {
		t.Errorf("kind = %v, want activation", k)
	}
	if name, _ := h.ActiveToolName(); name != "a" {
		t.Errorf("active = %q, want a", name)
	}
	if len(errs.errs) != 1 {
		t.Errorf("reported %d errors, want 1", len(errs.errs))
	}
}

func TestActivateSwitchOrder(t *testing.T) {
	h := NewToolHost(nil)
	rec := &recorder{}
	_ = h.Register(rec.tool("a"))
	_ = h.Register(rec.tool("b"))

	_ = h.Activate("a")
	_ = h.Activate("b")
	_ = h.Activate("b")
	h.Deactivate()
	h.Deactivate()

	want := []string{
		"a:activate",
		"a:deactivate", "b:activate",
		"b:deactivate", "b:activate",
		"b:deactivate",
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if _, ok := h.ActiveToolName(); ok {
		t.Error("host still active after Deactivate")
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	tests := []struct {
		name string
		tool *Tool
	}{
		{"nil", nil},
		{"empty", &Tool{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewToolHost(nil)
			errs := collectErrors(h)
			err := h.Register(tt.tool)
			if !errors.Is(err, ErrEmptyName) {
				t.Errorf("Register = %v, want ErrEmptyName", err)
			}
			if k, _ := KindOf(err); k != KindValidation {
				t.Errorf("kind = %v, want validation", k)
			}
			if len(errs.errs) != 1 {
				t.Errorf("reported %d errors, want 1", len(errs.errs))
			}
			if len(h.Tools()) != 0 {
				t.Errorf("Tools() = %v, want empty", h.Tools())
			}
		})
	}
}

func TestRegisterReplacesKeepsActive(t *testing.T) {
	h := NewToolHost(nil)
	rec := &recorder{}
	old := rec.tool("pen")
	_ = h.Register(old)
	_ = h.Activate("pen")
	replacement := rec.tool("pen")
	_ = h.Register(replacement)

	if h.ActiveTool() != old {
		t.Error("re-registering replaced the active tool instance")
	}
	if got, _ := h.Lookup("pen"); got != replacement {
		t.Error("Lookup did not return the replacement after re-register")
	}

	rec.reset()
	if err := h.Activate("pen"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if want := []string{"pen:deactivate", "pen:activate"}; !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if h.ActiveTool() != replacement {
		t.Error("Activate did not switch to the replacement")
	}
}

func TestDispatchWhenIdle(t *testing.T) {
	h := NewToolHost(nil)
	h.DispatchPointer(EventPointerDown, PointerEvent{})
	h.DispatchKey(EventKeyDown, KeyEvent{})
	h.DispatchColorChange(Colors{})
}

func TestHandlerFailureIsContained(t *testing.T) {
	h := NewToolHost(nil)
	errs := collectErrors(h)
	downs := 0
	_ = h.Register(&Tool{
		Name: "flaky",
		OnPointerDown: func(PointerEvent) error {
			downs++
			if downs == 1 {
				panic("boom")
			}
			return nil
		},
		OnPointerUp: func(PointerEvent) error { return errors.New("up failed") },
	})
	_ = h.Activate("flaky")

	h.DispatchPointer(EventPointerDown, PointerEvent{})
	h.DispatchPointer(EventPointerUp, PointerEvent{})
	h.DispatchPointer(EventPointerDown, PointerEvent{})

	if downs != 2 {
		t.Errorf("down handler ran %d times, want 2", downs)
	}
	if len(errs.errs) != 2 {
		t.Fatalf("reported %d errors, want 2", len(errs.errs))
	}
	if !errors.Is(errs.errs[0], ErrHandlerPanic) {
		t.Errorf("errs[0] = %v, want ErrHandlerPanic", errs.errs[0])
	}
	for _, err := range errs.errs {
		if k, _ := KindOf(err); k != KindHandler {
			t.Errorf("kind of %v = %v, want handler", err, k)
		}
	}
}

func TestDispatchCancelAsUp(t *testing.T) {
	h := NewToolHost(nil)
	rec := &recorder{}
	_ = h.Register(rec.tool("rec"))
	_ = h.Activate("rec")
	rec.reset()

	h.DispatchPointer(EventPointerCancel, PointerEvent{})
	if !reflect.DeepEqual(rec.calls, []string{"rec:up"}) {
		t.Errorf("calls = %v, want [rec:up]", rec.calls)
	}
}

func TestActivationHookFailureStillSwitches(t *testing.T) {
	h := NewToolHost(nil)
	errs := collectErrors(h)
	_ = h.Register(&Tool{Name: "a", OnDeactivate: func() error { return errors.New("stuck") }})
	_ = h.Register(&Tool{Name: "b"})
	_ = h.Activate("a")

	if err := h.Activate("b"); err != nil {
		t.Fatalf("Activate(b) = %v", err)
	}
	if name, _ := h.ActiveToolName(); name != "b" {
		t.Errorf("active = %q, want b", name)
	}
	if len(errs.errs) != 1 {
		t.Errorf("reported %d errors, want 1", len(errs.errs))
	}
}

func TestToolsSorted(t *testing.T) {
	h := NewToolHost(nil)
	for _, n := range []string{"pen", "airbrush", "eraser"} {
		_ = h.Register(&Tool{Name: n})
	}
	want := []string{"airbrush", "eraser", "pen"}
	if got := h.Tools(); !reflect.DeepEqual(got, want) {
		t.Errorf("Tools() = %v, want %v", got, want)
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindHandler, Op: "pointerdown", Tool: "pen", Err: errors.New("x")}
	want := `quill: handler pointerdown "pen": x`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf(plain) ok = true")
	}
}
