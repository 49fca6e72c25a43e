// Package testutil provides reusable test utilities for integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestWorkspace represents a temporary workspace for testing.
type TestWorkspace struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestWorkspace creates a new test workspace builder.
// Call Build() to create the actual workspace directory.
func NewTestWorkspace(t *testing.T) *TestWorkspace {
	t.Helper()
	return &TestWorkspace{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file to the workspace.
// The path is relative to the workspace root.
func (w *TestWorkspace) WithFile(path, content string) *TestWorkspace {
	w.files[path] = content
	return w
}

// WithKineticYAML sets the kinetic.yaml content for the workspace.
func (w *TestWorkspace) WithKineticYAML(yaml string) *TestWorkspace {
	w.files["kinetic.yaml"] = yaml
	return w
}

// Build creates the workspace directory skeleton and all configured files.
// Returns the TestWorkspace for method chaining.
func (w *TestWorkspace) Build() *TestWorkspace {
	w.t.Helper()

	w.Path = w.t.TempDir()

	for _, dir := range []string{"Surfaces", "Cards", "Archive", "Views", ".kinetic"} {
		if err := os.MkdirAll(filepath.Join(w.Path, dir), 0755); err != nil {
			w.t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	for path, content := range w.files {
		w.writeFile(path, content)
	}

	return w
}

// writeFile writes a file to the workspace, creating directories as needed.
func (w *TestWorkspace) writeFile(relPath, content string) {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		w.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		w.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// WriteFile writes a file into an already built workspace.
func (w *TestWorkspace) WriteFile(relPath, content string) {
	w.t.Helper()
	w.writeFile(relPath, content)
}

// ReadFile reads a file from the workspace.
// Returns the content as a string.
func (w *TestWorkspace) ReadFile(relPath string) string {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		w.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the workspace.
func (w *TestWorkspace) FileExists(relPath string) bool {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)
	_, err := os.Stat(fullPath)
	return err == nil
}
