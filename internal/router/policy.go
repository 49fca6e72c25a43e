// Package router classifies ledger columns by sync direction and merges
// freshly parsed documents against current ledger state. Markdown is
// authoritative on conflicts: human edits win, prior ledger values are kept
// in history, never discarded.
package router

// Policy is the sync direction for one ledger column.
type Policy int

const (
	// PolicyNone marks columns no parser pathway populates yet. The router
	// must not fabricate values for them.
	PolicyNone Policy = iota

	// PolicyMarkdownToLedger columns are absorbed verbatim on every parse
	// and never written back into markdown prose.
	PolicyMarkdownToLedger

	// PolicyLedgerToMarkdown columns flow only into generated view
	// documents, never into source documents.
	PolicyLedgerToMarkdown

	// PolicyRoundTrip columns synchronize in both directions.
	PolicyRoundTrip
)

func (p Policy) String() string {
	switch p {
	case PolicyMarkdownToLedger:
		return "markdown->ledger"
	case PolicyLedgerToMarkdown:
		return "ledger->markdown"
	case PolicyRoundTrip:
		return "round-trip"
	}
	return "none"
}

// Field names a ledger column.
type Field string

const (
	FieldObjectID       Field = "object_id"
	FieldCanonicalName  Field = "canonical_name"
	FieldColloquialName Field = "colloquial_name"
	FieldType           Field = "type"
	FieldParentID       Field = "parent_id"
	FieldState          Field = "state"
	FieldTags           Field = "tags"
	FieldBucket         Field = "bucket"
	FieldLocation       Field = "location"
	FieldNotes          Field = "notes"
	FieldPeople         Field = "people"
	FieldCreatedAt      Field = "created_at"
	FieldModifiedAt     Field = "modified_at"
)

// policies is the routing table. Object ids, notes, and schedule-bucket tags
// round-trip; most columns flow markdown to ledger only; people and
// timestamps have no parser pathway yet.
var policies = map[Field]Policy{
	FieldObjectID:       PolicyRoundTrip,
	FieldCanonicalName:  PolicyMarkdownToLedger,
	FieldColloquialName: PolicyMarkdownToLedger,
	FieldType:           PolicyMarkdownToLedger,
	FieldParentID:       PolicyMarkdownToLedger,
	FieldState:          PolicyMarkdownToLedger,
	FieldTags:           PolicyMarkdownToLedger,
	FieldBucket:         PolicyRoundTrip,
	FieldLocation:       PolicyMarkdownToLedger,
	FieldNotes:          PolicyRoundTrip,
	FieldPeople:         PolicyNone,
	FieldCreatedAt:      PolicyNone,
	FieldModifiedAt:     PolicyNone,
}

// PolicyFor returns the sync policy for a field.
func PolicyFor(f Field) Policy {
	return policies[f]
}
