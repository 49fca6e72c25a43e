package engine

import (
	"strings"

	"github.com/mikesturm/kinetic/internal/identity"
	"github.com/mikesturm/kinetic/internal/ledger"
	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/parser"
	"github.com/mikesturm/kinetic/internal/router"
	"github.com/mikesturm/kinetic/internal/surface"
	"github.com/mikesturm/kinetic/internal/views"
)

func (r *run) orphan(doc string, line int, text, reason string) {
	r.result.Orphans = append(r.result.Orphans, identity.Orphan{
		Document: doc, LineNo: line, Text: text, Reason: reason,
	})
}

func historyOf(changes []router.FieldChange) []ledger.HistoryEntry {
	var out []ledger.HistoryEntry
	for _, c := range changes {
		out = append(out, ledger.HistoryEntry{Field: string(c.Field), Old: c.Old, New: c.New})
	}
	return out
}

// surfacePass runs full identity resolution over a long-lived surface and
// merges everything it declares.
func (e *Engine) surfacePass(r *run, d *document) error {
	resolution, err := identity.Resolve(d.doc, e.Store)
	if err != nil {
		return err
	}
	r.result.Conflicts = append(r.result.Conflicts, resolution.Conflicts...)
	r.result.Orphans = append(r.result.Orphans, resolution.Orphans...)

	notes, hasNotes := collectNotes(d.doc)
	settle := make(map[int]bool)

	for _, resv := range resolution.Objects {
		current, ok, err := r.get(e.Store, resv.ID)
		if err != nil {
			return err
		}
		if !ok {
			continue // corrupted row, auto-merge halted for this object
		}

		opts := router.Options{}
		if resv.SlugPath == identity.FileScopePath && hasNotes {
			opts.Notes = &notes
			opts.PreviousNotes = e.lastSyncedNotes(resv.ID, current)
		}

		out := router.Merge(resv, current, opts)
		r.result.NoteConflicts = append(r.result.NoteConflicts, out.Conflicts...)
		if out.Created {
			r.result.Created++
		} else if len(out.Changes) > 0 {
			r.result.Updated++
		}

		r.add(ledger.Mutation{
			Object: out.Object,
			Fingerprint: ledger.Fingerprint{
				Document:    d.rel,
				SlugPath:    resv.SlugPath,
				OrdinalPath: resv.OrdinalPath,
			},
			History: historyOf(out.Changes),
		})

		// An unchecked line whose object has already migrated to an archive
		// is a leftover origin line: settle its marker in place.
		if out.Object.State == model.StateArchived && !resv.Checked && resv.LineNo > 0 {
			settle[resv.LineNo] = true
		}
	}

	// Identity write-back and marker settling: lines that resolved without an
	// embedded id get one, so the id survives any later restructuring of the
	// document, and origin lines of archived work get their box checked.
	if rewritten, changed := rewriteSurface(d.content, resolution.Objects, settle); changed {
		r.docWrites = append(r.docWrites, plannedWrite{rel: d.rel, data: rewritten, stamp: d.stamp})
	}
	return nil
}

// rewriteSurface appends an {id} annotation to every resolved line lacking
// one and checks the marker on lines listed in settle.
func rewriteSurface(content []byte, objs []*identity.Resolved, settle map[int]bool) ([]byte, bool) {
	lines := strings.Split(string(content), "\n")
	changed := false
	for _, o := range objs {
		if o.LineNo <= 0 || o.LineNo > len(lines) {
			continue
		}
		line := lines[o.LineNo-1]
		if settle[o.LineNo] {
			if idx := strings.Index(line, "[ ]"); idx >= 0 {
				line = line[:idx] + "[x]" + line[idx+3:]
				changed = true
			}
		}
		if parser.ExtractTokens(line).ObjectID == "" {
			line = strings.TrimRight(line, " \t") + " {" + o.ID.String() + "}"
			changed = true
		}
		lines[o.LineNo-1] = line
	}
	if !changed {
		return content, false
	}
	return []byte(strings.Join(lines, "\n")), true
}

// cardPass processes a daily card. Cards are placement surfaces: an
// unannotated line captures a new task (card placement makes it InProgress),
// an annotated line drives the referenced object's state, and a checked line
// migrates to the archive, append first, removal after.
func (e *Engine) cardPass(r *run, d *document) error {
	lines := strings.Split(string(d.content), "\n")
	archivePath := surface.ArchivePathFor(d.rel)
	completedOn := e.cardDate(d)
	removed := make(map[int]bool)
	changed := false

	for _, item := range d.doc.Checklists() {
		node := item.Node
		idx := node.LineNo - 1

		if node.Tokens.ObjectID == "" {
			name := parser.StripTokens(node.Text)
			if name == "" {
				r.orphan(d.rel, node.LineNo, node.Text, "checklist line with no text")
				continue
			}
			seq, err := e.Store.NextSequence(model.FamilyTask)
			if err != nil {
				return err
			}
			resv := &identity.Resolved{
				ID:       model.ID{Family: model.FamilyTask, Parts: []int{seq}},
				Type:     model.TypeTask,
				Document: d.rel,
				Name:     name,
				Checked:  node.Checked,
				Tags:     node.Tokens.Tags,
				Mentions: node.Tokens.Mentions,
				LineNo:   node.LineNo,
				Fresh:    true,
			}
			out := router.Merge(resv, nil, router.Options{})
			obj := out.Object
			hist := historyOf(out.Changes)
			if obj.State == model.StateActive {
				obj.State = model.StateInProgress
				hist = append(hist, ledger.HistoryEntry{Field: "state", Old: "Active", New: "InProgress"})
			}
			r.result.Created++

			lines[idx] = strings.TrimRight(lines[idx], " \t") + " {" + obj.ID.String() + "}"
			changed = true
			if obj.State == model.StateCompleted {
				e.migrate(r, obj, &hist, archivePath, lines[idx], completedOn)
				removed[idx] = true
			}
			r.add(ledger.Mutation{Object: obj, History: hist})
			continue
		}

		id, err := model.ParseID(node.Tokens.ObjectID)
		if err != nil {
			r.orphan(d.rel, node.LineNo, node.Text, "unparseable id annotation")
			continue
		}
		obj, ok, err := r.get(e.Store, id)
		if err != nil {
			return err
		}
		if !ok {
			continue // corrupted row, auto-merge halted for this object
		}
		if obj == nil {
			r.orphan(d.rel, node.LineNo, node.Text, "unknown object id")
			continue
		}
		obj = obj.Clone()

		var hist []ledger.HistoryEntry
		switch {
		case node.Checked && obj.State.Open():
			hist = append(hist, ledger.HistoryEntry{Field: "state", Old: string(obj.State), New: string(model.StateCompleted)})
			obj.State = model.StateCompleted
		case !node.Checked && obj.State == model.StateActive:
			hist = append(hist, ledger.HistoryEntry{Field: "state", Old: "Active", New: "InProgress"})
			obj.State = model.StateInProgress
		}

		switch {
		case node.Checked && obj.State == model.StateCompleted:
			e.migrate(r, obj, &hist, archivePath, lines[idx], completedOn)
			removed[idx] = true
			changed = true
		case node.Checked && obj.State == model.StateArchived:
			// Already migrated on an earlier run; just clear the card line.
			removed[idx] = true
			changed = true
		}

		if len(hist) > 0 {
			r.result.Updated++
			r.add(ledger.Mutation{Object: obj, History: hist})
		}
	}

	if changed {
		var kept []string
		for i, line := range lines {
			if !removed[i] {
				kept = append(kept, line)
			}
		}
		r.docWrites = append(r.docWrites, plannedWrite{rel: d.rel, data: []byte(strings.Join(kept, "\n")), stamp: d.stamp})
	}
	return nil
}

// migrate moves a completed object into the archive document: the line is
// queued for an append-only archive write stamped with the completion date
// and a back-reference to the old document, and the state advances to
// Archived.
func (e *Engine) migrate(r *run, obj *model.Object, hist *[]ledger.HistoryEntry, archivePath, line, completedOn string) {
	if obj.Origin.Document == archivePath {
		return
	}
	oldDoc := obj.Origin.Document

	*hist = append(*hist, ledger.HistoryEntry{Field: "location", Old: oldDoc, New: archivePath})
	obj.Origin = model.Location{Document: archivePath}

	if obj.State == model.StateCompleted {
		*hist = append(*hist, ledger.HistoryEntry{Field: "state", Old: "Completed", New: "Archived"})
		obj.State = model.StateArchived
	}
	if old := obj.BucketTag(); old != "" {
		*hist = append(*hist, ledger.HistoryEntry{Field: "bucket", Old: old, New: ""})
		obj.SetBucketTag("")
	}

	entry := strings.TrimRight(line, " \t") + " (" + completedOn + ")"
	if oldDoc != "" {
		ref := model.BackRef{ObjectID: obj.ID, Document: oldDoc, MovedAt: e.now()}
		r.backRefs = append(r.backRefs, ref)
		entry += " " + ref.Render()
	}
	r.archiveAppends[archivePath] = append(r.archiveAppends[archivePath], entry)
}

// cardDate returns the card's date for archive entries: frontmatter first,
// then the filename, then today.
func (e *Engine) cardDate(d *document) string {
	if d.doc.Frontmatter != nil && d.doc.Frontmatter.Date != "" {
		return d.doc.Frontmatter.Date
	}
	if t, err := surface.ParseCardDate(d.rel); err == nil {
		return t.Format("2006-01-02")
	}
	return e.now().Format("2006-01-02")
}

// schedulePass absorbs bucket placement and completions from the S3 surface.
// The surface itself is regenerated from the ledger afterwards, so no line
// rewriting happens here.
func (e *Engine) schedulePass(r *run, d *document) error {
	stamp := d.stamp
	r.scheduleStamp = &stamp

	for _, item := range d.doc.Checklists() {
		bucket, ok := bucketFromHeadings(item.Headings)
		if !ok {
			continue
		}
		node := item.Node

		if node.Tokens.ObjectID == "" {
			r.orphan(d.rel, node.LineNo, node.Text, "schedule line without id annotation")
			continue
		}
		id, err := model.ParseID(node.Tokens.ObjectID)
		if err != nil {
			r.orphan(d.rel, node.LineNo, node.Text, "unparseable id annotation")
			continue
		}
		obj, ok, err := r.get(e.Store, id)
		if err != nil {
			return err
		}
		if !ok {
			continue // corrupted row, auto-merge halted for this object
		}
		if obj == nil {
			r.orphan(d.rel, node.LineNo, node.Text, "unknown object id")
			continue
		}
		obj = obj.Clone()

		var hist []ledger.HistoryEntry
		if node.Checked && obj.State.Open() {
			hist = append(hist, ledger.HistoryEntry{Field: "state", Old: string(obj.State), New: string(model.StateCompleted)})
			obj.State = model.StateCompleted
			if old := obj.BucketTag(); old != "" {
				hist = append(hist, ledger.HistoryEntry{Field: "bucket", Old: old, New: ""})
				obj.SetBucketTag("")
			}
		} else if old := obj.BucketTag(); !node.Checked && old != bucket {
			hist = append(hist, ledger.HistoryEntry{Field: "bucket", Old: old, New: bucket})
			obj.SetBucketTag(bucket)
		}

		if len(hist) > 0 {
			r.result.Updated++
			r.add(ledger.Mutation{Object: obj, History: hist})
		}
	}
	return nil
}

func bucketFromHeadings(headings []*parser.HeadingNode) (string, bool) {
	for i := len(headings) - 1; i >= 0; i-- {
		if tag, ok := views.BucketForHeading(parser.StripTokens(headings[i].Text)); ok {
			return tag, ok
		}
	}
	return "", false
}

// archivePass settles state for objects whose lines live in archive
// documents: anything found there is done work.
func (e *Engine) archivePass(r *run, d *document) error {
	for _, item := range d.doc.Checklists() {
		node := item.Node
		if node.Tokens.ObjectID == "" {
			continue // historical text, nothing to settle
		}
		id, err := model.ParseID(node.Tokens.ObjectID)
		if err != nil {
			continue
		}
		obj, ok, err := r.get(e.Store, id)
		if err != nil {
			return err
		}
		if !ok {
			continue // corrupted row, auto-merge halted for this object
		}
		if obj == nil || obj.State == model.StateArchived || obj.State == model.StateDeleted {
			continue
		}
		obj = obj.Clone()

		var hist []ledger.HistoryEntry
		if obj.State.Open() {
			hist = append(hist, ledger.HistoryEntry{Field: "state", Old: string(obj.State), New: string(model.StateCompleted)})
			obj.State = model.StateCompleted
		}
		if obj.State == model.StateCompleted {
			hist = append(hist, ledger.HistoryEntry{Field: "state", Old: "Completed", New: "Archived"})
			obj.State = model.StateArchived
		}
		if old := obj.BucketTag(); old != "" {
			hist = append(hist, ledger.HistoryEntry{Field: "bucket", Old: old, New: ""})
			obj.SetBucketTag("")
		}

		if len(hist) > 0 {
			r.result.Updated++
			r.add(ledger.Mutation{Object: obj, History: hist})
		}
	}
	return nil
}

// collectNotes gathers the document's preamble prose: plain lines before the
// first heading, plus the title section's prose when the document opens with
// an H1. Line gaps separate paragraphs.
func collectNotes(doc *parser.Document) (string, bool) {
	var nodes []*parser.PlainNode
	for _, n := range doc.Nodes {
		h, isHeading := n.(*parser.HeadingNode)
		if !isHeading {
			if p, ok := n.(*parser.PlainNode); ok {
				nodes = append(nodes, p)
			}
			continue
		}
		if h.Depth == 1 {
			for _, child := range h.Children {
				if _, nested := child.(*parser.HeadingNode); nested {
					break
				}
				if p, ok := child.(*parser.PlainNode); ok {
					nodes = append(nodes, p)
				}
			}
		}
		break
	}
	if len(nodes) == 0 {
		return "", false
	}

	var paras []string
	var cur []string
	lastLine := -2
	for _, p := range nodes {
		if len(cur) > 0 && p.LineNo != lastLine+1 {
			paras = append(paras, strings.Join(cur, "\n"))
			cur = nil
		}
		cur = append(cur, p.Text)
		lastLine = p.LineNo
	}
	paras = append(paras, strings.Join(cur, "\n"))
	return strings.Join(paras, "\n\n"), true
}

// lastSyncedNotes returns the notes value both sides last agreed on: the most
// recent notes entry in history, falling back to the current ledger value.
func (e *Engine) lastSyncedNotes(id model.ID, current *model.Object) string {
	if current == nil {
		return ""
	}
	hist, err := e.Store.History(id)
	if err != nil {
		return current.Notes
	}
	for i := len(hist) - 1; i >= 0; i-- {
		if hist[i].Field == string(router.FieldNotes) {
			return hist[i].New
		}
	}
	return current.Notes
}
