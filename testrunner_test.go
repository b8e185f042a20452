package quill

import (
	"strings"
	"testing"

	"github.com/phanxgames/quill/scene"
)

func TestLoadTestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"invalid json", `{`, "parse test script"},
		{"no steps", `{"steps": []}`, "no steps"},
		{"unknown action", `{"steps": [{"action": "jump"}]}`, "unknown action"},
		{"bad color", `{"steps": [{"action": "primary", "color": "nope"}]}`, "step 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTestScript([]byte(tt.json))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadTestScript = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestTestRunnerSequence(t *testing.T) {
	a := NewApp(AppConfig{Width: 200, Height: 100})
	rec := &recorder{}
	_ = a.Host.Register(rec.tool("one"))
	_ = a.Host.Register(rec.tool("two"))

	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "activate", "tool": "one"},
		{"action": "click", "x": 10, "y": 10},
		{"action": "wait", "frames": 2},
		{"action": "primary", "color": "#ff0000"},
		{"action": "activate", "tool": "two"},
		{"action": "drag", "fromX": 0, "fromY": 0, "toX": 30, "toY": 0, "frames": 3},
		{"action": "key", "key": "z", "code": "KeyZ"},
		{"action": "screenshot", "label": "after-key"}
	]}`))
	if err != nil {
		t.Fatalf("LoadTestScript: %v", err)
	}
	a.SetTestRunner(runner)

	for i := 0; i < 50 && !runner.Done(); i++ {
		a.step(1.0/60, nil)
	}
	if !runner.Done() {
		t.Fatal("runner did not finish in 50 frames")
	}
	a.step(1.0/60, nil)
	a.step(1.0/60, nil)

	want := []string{
		"one:activate",
		"one:down", "one:up",
		"one:color",
		"one:deactivate", "two:activate",
		"two:down", "two:move", "two:up",
		"two:keydown", "two:keyup",
	}
	if strings.Join(rec.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls =\n  %v\nwant\n  %v", rec.calls, want)
	}
	if len(a.screenshotQueue) != 1 || a.screenshotQueue[0] != "after-key" {
		t.Errorf("screenshot queue = %v, want [after-key]", a.screenshotQueue)
	}
	if a.Palette.Primary() != (scene.Color{R: 1, A: 1}) {
		t.Errorf("primary = %v, want red", a.Palette.Primary())
	}
}
