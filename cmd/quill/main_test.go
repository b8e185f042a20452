package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phanxgames/quill"
	"github.com/phanxgames/quill/config"
)

func TestBuiltinToolsCheck(t *testing.T) {
	want := map[string]string{
		"airbrush.js": "airbrush",
		"eraser.js":   "eraser",
		"pen.js":      "pen",
	}
	for file, name := range want {
		src, err := builtinTools.ReadFile("tools/" + file)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", file, err)
		}
		info, err := quill.Check(file, string(src), 0)
		if err != nil {
			t.Fatalf("Check(%s): %v", file, err)
		}
		if info.Name != name {
			t.Errorf("Check(%s).Name = %q, want %q", file, info.Name, name)
		}
		if len(info.Handlers) == 0 {
			t.Errorf("Check(%s) found no handlers", file)
		}
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.js")
	bad := filepath.Join(dir, "bad.js")
	if err := os.WriteFile(good, []byte(`return { name: "good", onPointerDown: function () {} };`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`return {`), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"check", "--config", "", good, bad})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("check with a broken file returned nil error")
	}
	got := out.String()
	if !strings.Contains(got, "good [onPointerDown]") {
		t.Errorf("output = %q, want good tool summary", got)
	}
	if !strings.Contains(got, "bad.js: FAIL") {
		t.Errorf("output = %q, want bad.js failure", got)
	}
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.toml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"init", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(written config): %v", err)
	}
	if cfg.Window != config.Default().Window {
		t.Errorf("Window = %+v, want defaults", cfg.Window)
	}

	rootCmd.SetArgs([]string{"init", path})
	if err := rootCmd.Execute(); err == nil {
		t.Error("second init without --force returned nil error")
	}
}
