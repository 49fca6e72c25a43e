package audit

import "github.com/mikesturm/kinetic/internal/model"

// VerifyObject recomputes the canonical-name checksum and compares it against
// the stored value. A mismatch means the immutable column was altered outside
// the normal write path; the object must be excluded from merging until a
// human resolves it.
func VerifyObject(obj *model.Object) *model.CorruptionError {
	computed := model.Checksum(obj.CanonicalName)
	if computed == obj.CanonicalChecksum {
		return nil
	}
	return &model.CorruptionError{
		ID:       obj.ID,
		Field:    "canonical_name",
		Stored:   obj.CanonicalChecksum,
		Computed: computed,
	}
}

// VerifyAll checks every object and returns the corrupted ones. A nil result
// means the ledger's immutable columns are intact.
func VerifyAll(objects []*model.Object) []*model.CorruptionError {
	var bad []*model.CorruptionError
	for _, obj := range objects {
		if err := VerifyObject(obj); err != nil {
			bad = append(bad, err)
		}
	}
	return bad
}
