// Package commit applies planned document writes atomically and in order.
// Each write is guarded three ways: an optimistic stamp check catches
// concurrent edits before anything is touched, append-only targets refuse to
// shrink, and every landed file is read back and verified. The ledger commits
// before any document write, so a crash here can lose at most generated
// markdown, never record.
package commit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikesturm/kinetic/internal/atomicfile"
	"github.com/mikesturm/kinetic/internal/audit"
)

// Stamp captures a file's observed content at read time. A later write is
// allowed only if the file still matches; the zero Stamp asserts the file
// did not exist.
type Stamp struct {
	Exists   bool
	Size     int64
	Checksum string
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// StampBytes stamps content already in hand, for callers that read the file
// themselves.
func StampBytes(data []byte) Stamp {
	return Stamp{Exists: true, Size: int64(len(data)), Checksum: checksum(data)}
}

// StampFile stamps a file's current content. A transient read error is
// retried once before giving up.
func StampFile(path string) (Stamp, error) {
	data, stamp, err := ReadFile(path)
	_ = data
	return stamp, err
}

// ReadFile reads a document and stamps it in one step, retrying the read once
// on failure. A missing file is not an error: it reads as empty with a
// non-existent stamp.
func ReadFile(path string) ([]byte, Stamp, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Stamp{}, nil
		}
		return nil, Stamp{}, fmt.Errorf("read %s: %w", path, err)
	}
	return data, Stamp{Exists: true, Size: int64(len(data)), Checksum: checksum(data)}, nil
}

// Write is one planned document write.
type Write struct {
	Path  string // workspace-relative, for logs and errors
	Abs   string // absolute path on disk
	Data  []byte
	Stamp Stamp // expected pre-image

	// AppendOnly enforces that the current content is a byte prefix of Data.
	// Archive files are committed with this set: they grow or stay, never
	// shrink.
	AppendOnly bool
}

// Coordinator applies write plans. Writes land in plan order, so callers
// sequence archive appends ahead of the removals that depend on them.
type Coordinator struct {
	Log *audit.Logger
}

// Commit checks every stamp, then applies the writes in order. The stamp pass
// runs first so a concurrent edit aborts the whole plan before any file is
// touched. A write that lands but fails readback verification is retried
// once; a second failure stops the plan and reports how far it got.
func (c *Coordinator) Commit(writes []Write) error {
	for i := range writes {
		if err := c.checkStamp(&writes[i]); err != nil {
			return err
		}
	}

	for i := range writes {
		w := &writes[i]
		if err := c.applyWrite(w); err != nil {
			return &PartialCommitError{
				Applied:  i,
				Planned:  len(writes),
				Document: w.Path,
				Err:      err,
			}
		}
		c.log(audit.Entry{Operation: "commit", Document: w.Path, Detail: "written"})
	}
	return nil
}

func (c *Coordinator) checkStamp(w *Write) error {
	current, err := StampFile(w.Abs)
	if err != nil {
		return err
	}
	if current != w.Stamp {
		c.log(audit.Entry{Operation: "conflict", Document: w.Path})
		return &ConflictError{Document: w.Path, Expected: w.Stamp, Found: current}
	}

	if w.AppendOnly && current.Exists {
		existing, _, err := ReadFile(w.Abs)
		if err != nil {
			return err
		}
		if len(w.Data) < len(existing) || !bytes.Equal(w.Data[:len(existing)], existing) {
			return &AppendViolationError{Document: w.Path, OldSize: len(existing), NewSize: len(w.Data)}
		}
	}
	return nil
}

func (c *Coordinator) applyWrite(w *Write) error {
	if err := os.MkdirAll(filepath.Dir(w.Abs), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", w.Path, err)
	}

	err := atomicfile.WriteFileVerified(w.Abs, w.Data, 0)
	var verr *atomicfile.VerificationError
	if errors.As(err, &verr) {
		// One retry covers a transient readback mismatch; a second failure
		// is reported as corruption in flight.
		c.log(audit.Entry{Operation: "verify-retry", Document: w.Path})
		err = atomicfile.WriteFileVerified(w.Abs, w.Data, 0)
	}
	if errors.As(err, &verr) {
		return &VerificationFailure{Document: w.Path, Err: err}
	}
	return err
}

func (c *Coordinator) log(entry audit.Entry) {
	if c.Log != nil {
		_ = c.Log.Log(entry)
	}
}
