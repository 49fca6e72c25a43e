package router

import (
	"sort"
	"strings"

	"github.com/mikesturm/kinetic/internal/identity"
	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/surface"
)

// FieldChange records one absorbed value for the object's history.
type FieldChange struct {
	Field Field
	Old   string
	New   string
}

// NoteConflict surfaces a notes paragraph edited on both sides since the
// last sync. The markdown value won; the ledger value is preserved here and
// in history.
type NoteConflict struct {
	ID        model.ID
	Paragraph int
	Ledger    string
	Markdown  string
}

// Options carries per-document merge signals.
type Options struct {
	// Bucket is a schedule-bucket assignment derived from document
	// placement (the schedule surface's headings). Nil means the document
	// carries no bucket signal; empty string clears the bucket.
	Bucket *string

	// Notes is the notes text parsed from the surface, nil when the surface
	// carries none. PreviousNotes is the last value both sides agreed on,
	// used to tell a one-sided edit from a two-sided conflict.
	Notes         *string
	PreviousNotes string
}

// Result is the outcome of merging one resolved object.
type Result struct {
	Object    *model.Object
	Created   bool
	Changes   []FieldChange
	Conflicts []NoteConflict
}

// Merge applies the routing table to one freshly parsed object. current is
// the ledger's object, nil when this identity was just issued. The returned
// object is a new value; current is never mutated.
func Merge(res *identity.Resolved, current *model.Object, opts Options) *Result {
	out := &Result{}

	var obj *model.Object
	if current == nil {
		obj = model.NewObject(res.ID, res.Type, res.Name)
		out.Created = true
	} else {
		obj = current.Clone()
	}

	record := func(f Field, old, new string) {
		if old != new {
			out.Changes = append(out.Changes, FieldChange{Field: f, Old: old, New: new})
		}
	}

	// Markdown -> ledger columns, absorbed verbatim. The canonical name is
	// the exception: it is write-once, and a changed value at the same
	// identity is the auditor's problem, not an edit to absorb.
	record(FieldColloquialName, obj.ColloquialName, res.Name)
	obj.ColloquialName = res.Name

	if res.Type.Valid() && res.Type != obj.Type {
		record(FieldType, string(obj.Type), string(res.Type))
		obj.Type = res.Type
	}

	if !res.ParentID.Equal(obj.ParentID) {
		record(FieldParentID, obj.ParentID.String(), res.ParentID.String())
		obj.ParentID = res.ParentID
	}

	// Work that migrated into an archive is settled there. A leftover line
	// on the old surface is history, not a move back out.
	newLoc := model.Location{Document: res.Document, Path: res.SlugPath}
	if obj.Origin != newLoc && !surface.IsArchive(obj.Origin.Document) {
		record(FieldLocation, obj.Origin.Document, newLoc.Document)
		obj.Origin = newLoc
	}

	mergeTags(obj, res, opts, record)
	mergeState(obj, res, record)

	if opts.Notes != nil {
		merged, conflicts := MergeNotes(opts.PreviousNotes, obj.Notes, *opts.Notes)
		for _, c := range conflicts {
			c.ID = obj.ID
			out.Conflicts = append(out.Conflicts, c)
		}
		record(FieldNotes, obj.Notes, merged)
		obj.Notes = merged
	}

	// People and timestamps have no routing policy yet: leave them exactly
	// as the ledger holds them.

	out.Object = obj
	return out
}

func mergeTags(obj *model.Object, res *identity.Resolved, opts Options, record func(Field, string, string)) {
	oldManual := strings.Join(obj.ManualTags(), ";")
	oldBucket := obj.BucketTag()

	var manual []string
	bucketFromLine := ""
	for _, tag := range res.Tags {
		if model.IsBucketTag(tag) {
			bucketFromLine = tag
		} else {
			manual = append(manual, tag)
		}
	}
	sort.Strings(manual)

	bucket := oldBucket
	switch {
	case opts.Bucket != nil:
		bucket = *opts.Bucket
	case bucketFromLine != "":
		bucket = bucketFromLine
	}

	obj.Tags = manual
	if bucket != "" {
		obj.Tags = append(obj.Tags, bucket)
	}

	record(FieldTags, oldManual, strings.Join(manual, ";"))
	record(FieldBucket, oldBucket, bucket)
}

// mergeState absorbs the checkbox marker. A checked box completes open work;
// unchecking a completed task is not a legal transition and is ignored, the
// ledger keeps the completion.
func mergeState(obj *model.Object, res *identity.Resolved, record func(Field, string, string)) {
	if res.Type != model.TypeTask && obj.Type != model.TypeTask {
		return
	}
	if res.Checked && obj.State.Open() {
		record(FieldState, string(obj.State), string(model.StateCompleted))
		obj.State = model.StateCompleted
	}
}
