package quill

import (
	"testing"

	"github.com/phanxgames/quill/scene"
)

func pev(id PointerID, x float64) PointerEvent {
	return PointerEvent{PointerID: id, Point: scene.Point{X: x}}
}

func TestSessionLifecycle(t *testing.T) {
	tr := NewSessionTracker()
	tr.Start(pev(1, 0))
	tr.Move(pev(1, 1))
	tr.Move(pev(1, 2))

	got, ok := tr.Get(1)
	if !ok || len(got) != 3 {
		t.Fatalf("Get(1) = %d events, %v; want 3, true", len(got), ok)
	}

	s, ok := tr.End(pev(1, 3))
	if !ok {
		t.Fatal("End(1) ok = false, want true")
	}
	if len(s) != 4 {
		t.Fatalf("session length = %d, want 4", len(s))
	}
	for i, ev := range s {
		if ev.Point.X != float64(i) {
			t.Errorf("session[%d].X = %v, want %v", i, ev.Point.X, i)
		}
	}
	if _, ok := tr.Get(1); ok {
		t.Error("session still present after End")
	}
	if tr.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tr.Len())
	}
}

func TestSessionMoveWithoutStart(t *testing.T) {
	tr := NewSessionTracker()
	tr.Move(pev(7, 1))
	if tr.Len() != 0 {
		t.Errorf("Len() = %d after orphan move, want 0", tr.Len())
	}
	if _, ok := tr.End(pev(7, 2)); ok {
		t.Error("End without session ok = true, want false")
	}
}

func TestSessionRestartDiscardsPrevious(t *testing.T) {
	tr := NewSessionTracker()
	tr.Start(pev(1, 0))
	tr.Move(pev(1, 1))
	tr.Start(pev(1, 10))

	got, _ := tr.Get(1)
	if len(got) != 1 || got[0].Point.X != 10 {
		t.Errorf("session after restart = %v, want single event at x=10", got)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	tr := NewSessionTracker()
	tr.Start(pev(1, 0))
	tr.Start(pev(2, 100))
	tr.Move(pev(2, 101))
	tr.Move(pev(1, 1))

	s1, _ := tr.End(pev(1, 2))
	if len(s1) != 3 {
		t.Errorf("pointer 1 session length = %d, want 3", len(s1))
	}
	s2, ok := tr.Get(2)
	if !ok || len(s2) != 2 {
		t.Errorf("pointer 2 session = %d events, %v; want 2, true", len(s2), ok)
	}
}

func TestSessionGetReturnsCopy(t *testing.T) {
	tr := NewSessionTracker()
	tr.Start(pev(1, 0))
	got, _ := tr.Get(1)
	got[0].Point.X = 99
	again, _ := tr.Get(1)
	if again[0].Point.X != 0 {
		t.Error("mutating Get result changed the tracked session")
	}
}
