// Package atomicfile writes files via temp-and-rename so readers never see a
// torn document, and optionally verifies the bytes that landed on disk.
package atomicfile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes data to path atomically (best-effort cross-platform).
//
// It writes to a temporary file in the same directory and renames it into
// place, so a crash mid-write leaves either the old document or the new one,
// never a prefix.
//
// perm is used for the temp file. If perm is 0, WriteFile preserves the
// existing file's mode when there is one and otherwise falls back to 0644.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		if st, err := os.Stat(path); err == nil {
			perm = st.Mode()
		} else {
			perm = 0o644
		}
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	// Best-effort; some filesystems may not support chmod here.
	_ = tmp.Chmod(perm)

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// On Windows, renaming over an existing file fails. Remove first (not atomic).
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(path)
		if err2 := os.Rename(tmpPath, path); err2 != nil {
			return fmt.Errorf("rename temp file: %w", err)
		}
	}

	committed = true
	return nil
}

// VerificationError reports a post-write readback that did not match what was
// written. Size is compared first; a size match with differing content is
// reported through the checksums.
type VerificationError struct {
	Path          string
	WroteSize     int
	ReadSize      int
	WroteChecksum string
	ReadChecksum  string
}

func (e *VerificationError) Error() string {
	if e.WroteSize != e.ReadSize {
		return fmt.Sprintf("%s: wrote %d bytes, read back %d", e.Path, e.WroteSize, e.ReadSize)
	}
	return fmt.Sprintf("%s: readback checksum %.12s does not match written %.12s",
		e.Path, e.ReadChecksum, e.WroteChecksum)
}

// WriteFileVerified writes atomically, then reads the file back and compares
// size and SHA-256 against what was written. A mismatch returns
// *VerificationError; retry policy belongs to the caller.
func WriteFileVerified(path string, data []byte, perm os.FileMode) error {
	if err := WriteFile(path, data, perm); err != nil {
		return err
	}

	got, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read back %s: %w", path, err)
	}
	if len(got) == len(data) && bytes.Equal(got, data) {
		return nil
	}

	wrote := sha256.Sum256(data)
	read := sha256.Sum256(got)
	return &VerificationError{
		Path:          path,
		WroteSize:     len(data),
		ReadSize:      len(got),
		WroteChecksum: hex.EncodeToString(wrote[:]),
		ReadChecksum:  hex.EncodeToString(read[:]),
	}
}
