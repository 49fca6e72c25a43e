package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/sqlutil"
)

// Fingerprint records where an object appeared, keyed both by slugs and by
// sibling ordinals.
type Fingerprint struct {
	Document    string
	SlugPath    string
	OrdinalPath string
}

// HistoryEntry is one absorbed field change, queued for the history table.
type HistoryEntry struct {
	Field string
	Old   string
	New   string
}

// Mutation is the unit of ledger write: one object's merged value, its
// fingerprint, and the field changes that produced it.
type Mutation struct {
	Object      *model.Object
	Fingerprint Fingerprint
	History     []HistoryEntry
}

// Apply lands a batch of mutations in a single transaction. Readers observe
// either the pre-sync ledger or the post-sync ledger, never a mix.
func (s *Store) Apply(muts []Mutation) error {
	if len(muts) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, mut := range muts {
		if err := upsertObject(tx, mut.Object); err != nil {
			return err
		}
		if mut.Fingerprint.Document != "" {
			if err := upsertFingerprint(tx, mut.Object.ID, mut.Fingerprint); err != nil {
				return err
			}
		}
		for _, h := range mut.History {
			_, err := tx.Exec(
				`INSERT INTO history (object_id, field, old_value, new_value, changed_at)
				 VALUES (?, ?, ?, ?, ?)`,
				mut.Object.ID.String(), h.Field, h.Old, h.New, now)
			if err != nil {
				return fmt.Errorf("append history for %s: %w", mut.Object.ID, err)
			}
		}
	}

	return tx.Commit()
}

func upsertObject(tx *sql.Tx, obj *model.Object) error {
	tags, err := json.Marshal(obj.Tags)
	if err != nil {
		return err
	}
	people, err := json.Marshal(obj.People)
	if err != nil {
		return err
	}

	var parent any
	if !obj.ParentID.IsZero() {
		parent = obj.ParentID.String()
	}

	// CreatedAt is fixed by the store at first insert; it is not a column
	// the merge pipeline writes.
	_, err = tx.Exec(`
		INSERT INTO objects (
			id, type, canonical_name, canonical_checksum, colloquial_name,
			parent_id, state, tags, origin_document, origin_path, notes,
			people, created_at, modified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			colloquial_name = excluded.colloquial_name,
			type            = excluded.type,
			parent_id       = excluded.parent_id,
			state           = excluded.state,
			tags            = excluded.tags,
			origin_document = excluded.origin_document,
			origin_path     = excluded.origin_path,
			notes           = excluded.notes,
			people          = excluded.people,
			modified_at     = excluded.modified_at`,
		obj.ID.String(), string(obj.Type), obj.CanonicalName, obj.CanonicalChecksum,
		obj.ColloquialName, parent, string(obj.State), string(tags),
		obj.Origin.Document, obj.Origin.Path, obj.Notes, string(people),
		unixOrNil(obj.CreatedAt), nowUnix())
	if err != nil {
		return fmt.Errorf("upsert object %s: %w", obj.ID, err)
	}
	return nil
}

func upsertFingerprint(tx *sql.Tx, id model.ID, fp Fingerprint) error {
	_, err := tx.Exec(`
		INSERT INTO fingerprints (document, object_id, slug_path, ordinal_path)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document, object_id) DO UPDATE SET
			slug_path    = excluded.slug_path,
			ordinal_path = excluded.ordinal_path`,
		fp.Document, id.String(), fp.SlugPath, fp.OrdinalPath)
	if err != nil {
		return fmt.Errorf("upsert fingerprint for %s: %w", id, err)
	}
	return nil
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func nowUnix() int64 {
	return time.Now().Unix()
}

const objectColumns = `id, type, canonical_name, canonical_checksum, colloquial_name,
	parent_id, state, tags, origin_document, origin_path, notes, people,
	created_at, modified_at`

func scanObject(rows *sql.Rows) (*model.Object, error) {
	var (
		obj          model.Object
		idStr, typ   string
		state        string
		parent       sql.NullString
		tags, people string
		created, mod sql.NullInt64
	)
	err := rows.Scan(&idStr, &typ, &obj.CanonicalName, &obj.CanonicalChecksum,
		&obj.ColloquialName, &parent, &state, &tags, &obj.Origin.Document,
		&obj.Origin.Path, &obj.Notes, &people, &created, &mod)
	if err != nil {
		return nil, err
	}

	obj.ID, err = model.ParseID(idStr)
	if err != nil {
		return nil, fmt.Errorf("ledger row %q: %w", idStr, err)
	}
	if parent.Valid {
		obj.ParentID, err = model.ParseID(parent.String)
		if err != nil {
			return nil, fmt.Errorf("ledger row %q parent: %w", idStr, err)
		}
	}
	obj.Type = model.ObjectType(typ)
	obj.State = model.State(state)
	if err := json.Unmarshal([]byte(tags), &obj.Tags); err != nil {
		return nil, fmt.Errorf("ledger row %q tags: %w", idStr, err)
	}
	if err := json.Unmarshal([]byte(people), &obj.People); err != nil {
		return nil, fmt.Errorf("ledger row %q people: %w", idStr, err)
	}
	if created.Valid {
		t := time.Unix(created.Int64, 0).UTC()
		obj.CreatedAt = &t
	}
	if mod.Valid {
		t := time.Unix(mod.Int64, 0).UTC()
		obj.ModifiedAt = &t
	}
	return &obj, nil
}

// Get returns the object for an id, or ErrNotFound.
func (s *Store) Get(id model.ID) (*model.Object, error) {
	rows, err := s.db.Query(`SELECT `+objectColumns+` FROM objects WHERE id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	objs, err := sqlutil.ScanRows(rows, scanObject)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, ErrNotFound
	}
	return objs[0], nil
}

// All returns every object in the ledger, deleted ones included, ordered by id.
func (s *Store) All() ([]*model.Object, error) {
	rows, err := s.db.Query(`SELECT ` + objectColumns + ` FROM objects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, scanObject)
}

// ByState returns objects in the given state, ordered by id.
func (s *Store) ByState(state model.State) ([]*model.Object, error) {
	rows, err := s.db.Query(
		`SELECT `+objectColumns+` FROM objects WHERE state = ? ORDER BY id`, string(state))
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, scanObject)
}

// ByType returns objects of the given type, ordered by id.
func (s *Store) ByType(typ model.ObjectType) ([]*model.Object, error) {
	rows, err := s.db.Query(
		`SELECT `+objectColumns+` FROM objects WHERE type = ? ORDER BY id`, string(typ))
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, scanObject)
}

// ByParent returns the direct children of an object, ordered by id.
func (s *Store) ByParent(parent model.ID) ([]*model.Object, error) {
	rows, err := s.db.Query(
		`SELECT `+objectColumns+` FROM objects WHERE parent_id = ? ORDER BY id`, parent.String())
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, scanObject)
}

// ByTag returns objects carrying the given tag. Tags live in a JSON column,
// so matching happens here rather than in SQL.
func (s *Store) ByTag(tag string) ([]*model.Object, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	var out []*model.Object
	for _, obj := range all {
		if obj.HasTag(tag) {
			out = append(out, obj)
		}
	}
	return out, nil
}

// Exists reports whether an id has ever been issued.
func (s *Store) Exists(id model.ID) (bool, error) {
	_, err := s.Get(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
