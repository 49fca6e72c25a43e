package testutil

import (
	"os"
	"path/filepath"
	"strings"
)

// AssertFileExists fails the test if the file does not exist.
func (w *TestWorkspace) AssertFileExists(relPath string) {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		w.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileNotExists fails the test if the file exists.
func (w *TestWorkspace) AssertFileNotExists(relPath string) {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)
	if _, err := os.Stat(fullPath); err == nil {
		w.t.Errorf("expected file to not exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain the substring.
func (w *TestWorkspace) AssertFileContains(relPath, substr string) {
	w.t.Helper()
	content := w.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		w.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertFileNotContains fails the test if the file contains the substring.
func (w *TestWorkspace) AssertFileNotContains(relPath, substr string) {
	w.t.Helper()
	content := w.ReadFile(relPath)
	if strings.Contains(content, substr) {
		w.t.Errorf("expected file %s to not contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertDirExists fails the test if the directory does not exist.
func (w *TestWorkspace) AssertDirExists(relPath string) {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)
	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		w.t.Errorf("expected directory to exist: %s", relPath)
		return
	}
	if !info.IsDir() {
		w.t.Errorf("expected %s to be a directory, but it's a file", relPath)
	}
}

// AssertObjectExists checks that an object exists in the ledger.
func (w *TestWorkspace) AssertObjectExists(objectID string) {
	w.t.Helper()
	result := w.RunCLI("show", objectID)
	if !result.OK {
		w.t.Errorf("expected object to exist: %s, got error: %v", objectID, result.Error)
	}
}

// AssertObjectNotExists checks that an object does not exist in the ledger.
func (w *TestWorkspace) AssertObjectNotExists(objectID string) {
	w.t.Helper()
	result := w.RunCLI("show", objectID)
	if result.OK {
		w.t.Errorf("expected object to not exist: %s, but it does", objectID)
	}
}
