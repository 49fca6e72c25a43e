package watcher

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mikesturm/kinetic/internal/engine"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing root")
	}
	if _, err := New(Config{Root: "/tmp/ws"}); err == nil {
		t.Error("expected error for missing engine")
	}

	w, err := New(Config{Root: "/tmp/ws", Engine: &engine.Engine{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.debounceDelay != 250*time.Millisecond {
		t.Errorf("default debounce = %v, want 250ms", w.debounceDelay)
	}
}

func TestShouldIgnore(t *testing.T) {
	w, err := New(Config{Root: "/ws", Engine: &engine.Engine{}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join("/ws", "Surfaces", "Launch.md"), false},
		{filepath.Join("/ws", "Cards", "Deep-Work.md"), false},
		{filepath.Join("/ws", "Archive", "Cards.md"), false},
		{filepath.Join("/ws", "Views", "Projects.md"), true},
		{filepath.Join("/ws", ".kinetic", "integrity.log"), true},
		{filepath.Join("/ws", ".git", "COMMIT_EDITMSG"), true},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestShouldIgnoreDir(t *testing.T) {
	w, err := New(Config{Root: "/ws", Engine: &engine.Engine{}})
	if err != nil {
		t.Fatal(err)
	}

	for dir, want := range map[string]bool{
		"/ws/Surfaces": false,
		"/ws/Views":    true,
		"/ws/.kinetic": true,
		"/ws/.git":     true,
	} {
		if got := w.shouldIgnoreDir(dir); got != want {
			t.Errorf("shouldIgnoreDir(%q) = %v, want %v", dir, got, want)
		}
	}
}
