package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/sqlutil"
)

// HistoryRecord is one row of the append-only field history.
type HistoryRecord struct {
	Seq       int64
	ObjectID  model.ID
	Field     string
	Old       string
	New       string
	ChangedAt time.Time
}

// History returns an object's field changes in the order they were absorbed.
func (s *Store) History(id model.ID) ([]HistoryRecord, error) {
	rows, err := s.db.Query(
		`SELECT seq, object_id, field, old_value, new_value, changed_at
		 FROM history WHERE object_id = ? ORDER BY seq`, id.String())
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, scanHistory)
}

func scanHistory(rows *sql.Rows) (HistoryRecord, error) {
	var (
		rec   HistoryRecord
		idStr string
		at    int64
	)
	if err := rows.Scan(&rec.Seq, &idStr, &rec.Field, &rec.Old, &rec.New, &at); err != nil {
		return rec, err
	}
	id, err := model.ParseID(idStr)
	if err != nil {
		return rec, fmt.Errorf("history row %q: %w", idStr, err)
	}
	rec.ObjectID = id
	rec.ChangedAt = time.Unix(at, 0).UTC()
	return rec, nil
}

// Deletion is one row of the deletion log.
type Deletion struct {
	ObjectID  model.ID
	Reason    string
	DeletedAt time.Time
}

// RecordDeletion soft-deletes an object: the state flips to Deleted, the
// reason lands in the deletion log, and the row itself stays put. Any state
// may be deleted.
func (s *Store) RecordDeletion(id model.ID, reason string) error {
	obj, err := s.Get(id)
	if err != nil {
		return err
	}
	prev := obj.State
	if err := obj.Transition(model.StateDeleted); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if _, err := tx.Exec(`UPDATE objects SET state = ?, modified_at = ? WHERE id = ?`,
		string(model.StateDeleted), now, id.String()); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO deletions (object_id, reason, deleted_at) VALUES (?, ?, ?)`,
		id.String(), reason, now); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO history (object_id, field, old_value, new_value, changed_at)
		 VALUES (?, 'state', ?, ?, ?)`,
		id.String(), string(prev), string(model.StateDeleted), now); err != nil {
		return err
	}
	return tx.Commit()
}

// Resurrect returns a Deleted object to Active. This is the only road out of
// Deleted; the caller is responsible for annotating the revival in markdown.
func (s *Store) Resurrect(id model.ID) error {
	obj, err := s.Get(id)
	if err != nil {
		return err
	}
	if obj.State != model.StateDeleted {
		return &model.InvalidTransitionError{ID: id, From: obj.State, To: model.StateActive}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if _, err := tx.Exec(`UPDATE objects SET state = ?, modified_at = ? WHERE id = ?`,
		string(model.StateActive), now, id.String()); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO history (object_id, field, old_value, new_value, changed_at)
		 VALUES (?, 'state', ?, ?, ?)`,
		id.String(), string(model.StateDeleted), string(model.StateActive), now); err != nil {
		return err
	}
	return tx.Commit()
}

// Deletions returns the full deletion log, oldest first.
func (s *Store) Deletions() ([]Deletion, error) {
	rows, err := s.db.Query(
		`SELECT object_id, reason, deleted_at FROM deletions ORDER BY deleted_at, object_id`)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (Deletion, error) {
		var (
			del   Deletion
			idStr string
			at    int64
		)
		if err := rows.Scan(&idStr, &del.Reason, &at); err != nil {
			return del, err
		}
		id, err := model.ParseID(idStr)
		if err != nil {
			return del, fmt.Errorf("deletion row %q: %w", idStr, err)
		}
		del.ObjectID = id
		del.DeletedAt = time.Unix(at, 0).UTC()
		return del, nil
	})
}

// RecordBackRef notes that an object moved away from a document.
func (s *Store) RecordBackRef(ref model.BackRef) error {
	at := ref.MovedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO backrefs (object_id, document, moved_at) VALUES (?, ?, ?)`,
		ref.ObjectID.String(), ref.Document, at.Unix())
	return err
}

// BackRefs returns the documents an object has moved away from, oldest first.
func (s *Store) BackRefs(id model.ID) ([]model.BackRef, error) {
	rows, err := s.db.Query(
		`SELECT object_id, document, moved_at FROM backrefs WHERE object_id = ? ORDER BY moved_at`,
		id.String())
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (model.BackRef, error) {
		var (
			ref   model.BackRef
			idStr string
			at    int64
		)
		if err := rows.Scan(&idStr, &ref.Document, &at); err != nil {
			return ref, err
		}
		id, err := model.ParseID(idStr)
		if err != nil {
			return ref, fmt.Errorf("backref row %q: %w", idStr, err)
		}
		ref.ObjectID = id
		ref.MovedAt = time.Unix(at, 0).UTC()
		return ref, nil
	})
}
