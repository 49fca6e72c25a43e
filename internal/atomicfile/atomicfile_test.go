package atomicfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileCreatesAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.md")

	if err := WriteFile(path, []byte("# Today\n"), 0); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, []byte("# Today\n- [ ] Call Dave\n"), 0); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Today\n- [ ] Call Dave\n" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteFileLeavesNoTempDebris(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.md")
	if err := WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "card.md" {
		t.Errorf("dir entries = %v", entries)
	}
}

func TestWriteFileVerified(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger-view.md")
	if err := WriteFileVerified(path, []byte("## Projects\n"), 0o644); err != nil {
		t.Fatalf("verified write failed on healthy disk: %v", err)
	}
}

func TestVerificationErrorMessage(t *testing.T) {
	err := &VerificationError{Path: "Cards/x.md", WroteSize: 10, ReadSize: 4}
	if got := err.Error(); got != "Cards/x.md: wrote 10 bytes, read back 4" {
		t.Errorf("Error() = %q", got)
	}
}
