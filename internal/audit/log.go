package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mikesturm/kinetic/internal/model"
)

// Entry is a single integrity-log record. The log is append-only JSONL and
// doubles as the forensic trail for partial commits: every commit phase is
// logged before the next phase runs, so a crash leaves a readable account of
// how far the write got.
type Entry struct {
	Timestamp time.Time      `json:"ts"`
	Operation string         `json:"op"`       // sync, commit, conflict, corruption, delete, resurrect, capture, verify-retry
	ID        string         `json:"id,omitempty"`
	Document  string         `json:"doc,omitempty"`
	Detail    string         `json:"detail,omitempty"`
	Changes   map[string]any `json:"changes,omitempty"` // {field: {old: x, new: y}}
	Extra     map[string]any `json:"extra,omitempty"`
}

// Logger appends entries to the workspace integrity log.
type Logger struct {
	path    string
	enabled bool
	mu      sync.Mutex
}

// NewLogger creates a logger writing to <workspace>/.kinetic/integrity.log.
// With enabled false every call is a no-op.
func NewLogger(workspace string, enabled bool) *Logger {
	if !enabled {
		return &Logger{}
	}
	return &Logger{
		path:    filepath.Join(workspace, ".kinetic", "integrity.log"),
		enabled: true,
	}
}

// Log appends one entry.
func (l *Logger) Log(entry Entry) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal integrity entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create integrity log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open integrity log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write integrity entry: %w", err)
	}
	return nil
}

// LogCommit records one phase of a document commit.
func (l *Logger) LogCommit(doc, phase string) error {
	return l.Log(Entry{Operation: "commit", Document: doc, Detail: phase})
}

// LogConflict records a concurrent-modification abort on a document.
func (l *Logger) LogConflict(doc string) error {
	return l.Log(Entry{Operation: "conflict", Document: doc})
}

// LogCorruption records a checksum mismatch found during an audit.
func (l *Logger) LogCorruption(err *model.CorruptionError) error {
	return l.Log(Entry{
		Operation: "corruption",
		ID:        err.ID.String(),
		Detail:    err.Field,
		Extra:     map[string]any{"stored": err.Stored, "computed": err.Computed},
	})
}

// LogDelete records a soft deletion with its reason.
func (l *Logger) LogDelete(id, reason string) error {
	return l.Log(Entry{Operation: "delete", ID: id, Detail: reason})
}

// LogResurrect records a Deleted object returning to Active.
func (l *Logger) LogResurrect(id string) error {
	return l.Log(Entry{Operation: "resurrect", ID: id})
}

// LogCapture records an inbox capture.
func (l *Logger) LogCapture(id, text string) error {
	return l.Log(Entry{Operation: "capture", ID: id, Detail: text})
}

// Read returns all entries in append order. Malformed lines are skipped:
// the log must stay readable even after a partial write.
func (l *Logger) Read() ([]Entry, error) {
	if !l.enabled {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read integrity log: %w", err)
	}

	var entries []Entry
	for _, line := range splitLines(string(data)) {
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReadForID returns the entries touching one object id.
func (l *Logger) ReadForID(id string) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}
	var filtered []Entry
	for _, entry := range all {
		if entry.ID == id {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// Enabled reports whether the logger writes anywhere.
func (l *Logger) Enabled() bool {
	return l.enabled
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
