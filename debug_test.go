package quill

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDebugLogSkipsIdleFrames(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	a := NewApp(AppConfig{Width: 100, Height: 100})
	a.SetDebugMode(true)
	_ = a.Host.Register(&Tool{Name: "pen"})
	_ = a.Host.Activate("pen")
	buf.Reset()

	a.step(1.0/60, nil)
	if strings.Contains(buf.String(), "msg=frame") {
		t.Errorf("idle frame logged: %s", buf.String())
	}

	a.Router.InjectPress(10, 10)
	a.step(1.0/60, nil)
	out := buf.String()
	if !strings.Contains(out, "msg=frame") || !strings.Contains(out, "injected=true") || !strings.Contains(out, "tool=pen") {
		t.Errorf("busy frame log = %q", out)
	}
	if !strings.Contains(a.hud.text, "tool: pen") {
		t.Errorf("hud text = %q, want active tool", a.hud.text)
	}
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("nil logger still enabled")
	}
}
