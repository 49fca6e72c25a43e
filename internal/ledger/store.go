// Package ledger is the SQLite-backed system of record. Every tracked object,
// its append-only field history, its structural fingerprints, and the deletion
// log live here. Writes are transactional: a sync either lands whole or not
// at all.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested object id has never been issued.
var ErrNotFound = errors.New("object not found in ledger")

// Store is the ledger database handle.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Open opens or creates the ledger at <workspace>/.kinetic/ledger.db.
func Open(workspace string) (*Store, error) {
	dir := filepath.Join(workspace, ".kinetic")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create .kinetic directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "ledger.db"))
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens an in-memory ledger (for testing).
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the ledger.
func (s *Store) Close() error {
	return s.db.Close()
}

// CurrentSchemaVersion is the ledger schema version.
const CurrentSchemaVersion = 1

func (s *Store) initialize() error {
	schema := `
		-- WAL keeps concurrent readers off the writers' backs
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		PRAGMA foreign_keys = ON;

		-- Version tracking and family sequence counters
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		-- One row per issued identity. Rows are never removed: deletion is a
		-- state, not a DELETE.
		CREATE TABLE IF NOT EXISTS objects (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			canonical_name TEXT NOT NULL,
			canonical_checksum TEXT NOT NULL,
			colloquial_name TEXT NOT NULL DEFAULT '',
			parent_id TEXT,
			state TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			origin_document TEXT NOT NULL DEFAULT '',
			origin_path TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			people TEXT NOT NULL DEFAULT '[]',
			created_at INTEGER,
			modified_at INTEGER
		);

		-- Append-only field history. No UPDATE or DELETE ever touches this
		-- table; prior values survive every merge.
		CREATE TABLE IF NOT EXISTS history (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			object_id TEXT NOT NULL,
			field TEXT NOT NULL,
			old_value TEXT NOT NULL DEFAULT '',
			new_value TEXT NOT NULL DEFAULT '',
			changed_at INTEGER NOT NULL
		);

		-- Structural fingerprints: where each object last appeared, keyed two
		-- ways so either a rename or a reorder alone cannot orphan it.
		CREATE TABLE IF NOT EXISTS fingerprints (
			document TEXT NOT NULL,
			object_id TEXT NOT NULL,
			slug_path TEXT NOT NULL,
			ordinal_path TEXT NOT NULL,
			PRIMARY KEY (document, object_id)
		);

		-- Soft-deletion log: why each object left active service.
		CREATE TABLE IF NOT EXISTS deletions (
			object_id TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			deleted_at INTEGER NOT NULL
		);

		-- Back-references left behind when an object moves between documents.
		CREATE TABLE IF NOT EXISTS backrefs (
			object_id TEXT NOT NULL,
			document TEXT NOT NULL,
			moved_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_objects_state ON objects(state);
		CREATE INDEX IF NOT EXISTS idx_objects_type ON objects(type);
		CREATE INDEX IF NOT EXISTS idx_objects_parent ON objects(parent_id);
		CREATE INDEX IF NOT EXISTS idx_history_object ON history(object_id);
		CREATE INDEX IF NOT EXISTS idx_fingerprints_slug ON fingerprints(document, slug_path);
		CREATE INDEX IF NOT EXISTS idx_fingerprints_ordinal ON fingerprints(document, ordinal_path);
		CREATE INDEX IF NOT EXISTS idx_deletions_object ON deletions(object_id);
		CREATE INDEX IF NOT EXISTS idx_backrefs_object ON backrefs(object_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initialize ledger schema: %w", err)
	}

	_, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		fmt.Sprintf("%d", CurrentSchemaVersion))
	if err != nil {
		return fmt.Errorf("set ledger version: %w", err)
	}
	return nil
}
