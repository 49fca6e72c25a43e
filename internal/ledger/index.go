package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mikesturm/kinetic/internal/model"
)

// The store is the resolver's Index: fingerprints answer the structural
// lookups, meta counters issue top-level sequences, and the objects table
// remembers every child sequence ever handed out.

// LookupSlugPath returns the id last fingerprinted at this slug path.
func (s *Store) LookupSlugPath(document, path string) (model.ID, bool, error) {
	return s.lookupFingerprint(document, "slug_path", path)
}

// LookupOrdinalPath returns the id last fingerprinted at this ordinal path.
func (s *Store) LookupOrdinalPath(document, path string) (model.ID, bool, error) {
	return s.lookupFingerprint(document, "ordinal_path", path)
}

func (s *Store) lookupFingerprint(document, column, path string) (model.ID, bool, error) {
	var idStr string
	err := s.db.QueryRow(
		`SELECT object_id FROM fingerprints WHERE document = ? AND `+column+` = ? LIMIT 1`,
		document, path).Scan(&idStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ID{}, false, nil
	}
	if err != nil {
		return model.ID{}, false, err
	}
	id, err := model.ParseID(idStr)
	if err != nil {
		return model.ID{}, false, fmt.Errorf("fingerprint row %q: %w", idStr, err)
	}
	return id, true, nil
}

// NextSequence issues the next top-level sequence for a family. The counter
// advances inside its own transaction and never rolls back with an abandoned
// sync, so issued numbers are never reused.
func (s *Store) NextSequence(family model.Family) (int, error) {
	if !family.Valid() {
		return 0, fmt.Errorf("invalid id family %q", string(family))
	}
	key := "seq_" + string(family)

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	next := current + 1
	_, err = tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`,
		key, fmt.Sprintf("%d", next))
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}

// MaxIssuedChild returns the highest child sequence ever issued under a
// parent. Deleted children still count: their rows stay in the objects table,
// so a deleted child's number is never handed out twice.
func (s *Store) MaxIssuedChild(parent model.ID) (int, error) {
	if parent.IsZero() {
		return 0, nil
	}
	prefix := parent.String() + "."

	rows, err := s.db.Query(`SELECT id FROM objects WHERE id LIKE ?`, prefix+"%")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	max := 0
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return 0, err
		}
		rest := strings.TrimPrefix(idStr, prefix)
		if strings.Contains(rest, ".") {
			continue // deeper descendant, not a direct child
		}
		id, err := model.ParseID(idStr)
		if err != nil {
			continue
		}
		if seq := id.Parts[len(id.Parts)-1]; seq > max {
			max = seq
		}
	}
	return max, rows.Err()
}
