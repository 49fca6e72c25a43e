package identity

import (
	"fmt"

	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/parser"
)

// Index is the ledger-backed lookup the resolver consults before assigning
// fresh identifiers.
type Index interface {
	// LookupSlugPath returns the id previously issued for this structural
	// position, keyed by heading/text slugs.
	LookupSlugPath(document, path string) (model.ID, bool, error)

	// LookupOrdinalPath returns the id previously issued for this structural
	// position, keyed by sibling ordinals among material nodes.
	LookupOrdinalPath(document, path string) (model.ID, bool, error)

	// NextSequence issues the next top-level sequence number for a family.
	// Sequences are monotonic and never reused.
	NextSequence(family model.Family) (int, error)

	// MaxIssuedChild returns the highest child sequence ever issued under
	// the given parent id, or 0 if none.
	MaxIssuedChild(parent model.ID) (int, error)
}

// Resolved is one object identified in a document.
type Resolved struct {
	ID       model.ID
	ParentID model.ID // structural parent; zero for the file-scope project
	Type     model.ObjectType
	Document string

	Name    string // canonical text at this position (tokens stripped)
	Display string // raw text as written
	Checked bool   // checklist marker state, tasks only

	Tags     []string
	Mentions []string

	SlugPath    string
	OrdinalPath string
	LineNo      int

	// Fresh marks an identifier issued during this resolution rather than
	// recovered from a stored fingerprint or embedded annotation.
	Fresh bool
}

// Conflict records an embedded id annotation that disagrees with structural
// inference. The annotation wins; the disagreement is surfaced, not hidden.
type Conflict struct {
	Document   string
	LineNo     int
	Embedded   model.ID
	Structural model.ID
}

// Orphan is a checklist line with no resolvable identity and no inferable
// placement. Orphans are queued for confirmation, never silently assigned.
type Orphan struct {
	Document string
	LineNo   int
	Text     string
	Reason   string
}

// Resolution is the outcome of resolving one document.
type Resolution struct {
	Document  string
	Objects   []*Resolved // document order; file-scope project first
	Conflicts []Conflict
	Orphans   []Orphan
}

// ByID returns the resolved entry for an id, or nil.
func (r *Resolution) ByID(id model.ID) *Resolved {
	for _, obj := range r.Objects {
		if obj.ID.Equal(id) {
			return obj
		}
	}
	return nil
}

type resolver struct {
	doc *parser.Document
	idx Index
	res *Resolution

	// maxChildSeq tracks the highest sibling sequence seen or issued under
	// each parent id during this resolution.
	maxChildSeq map[string]int

	// claimed holds ids that slug-path lookups or embedded annotations will
	// take somewhere in this document. Ordinal fallback must never hand one
	// of these to a different line: a new sibling inserted before an
	// existing one gets a fresh id, not its neighbor's.
	claimed map[string]bool
	used    map[string]bool
}

// Resolve maps a parsed source document onto stable object identifiers.
// Documents with no checklist lines produce an empty resolution: pure prose
// is never materialized.
func Resolve(doc *parser.Document, idx Index) (*Resolution, error) {
	r := &resolver{
		doc:         doc,
		idx:         idx,
		res:         &Resolution{Document: doc.Path},
		maxChildSeq: make(map[string]int),
		claimed:     make(map[string]bool),
		used:        make(map[string]bool),
	}

	if len(doc.Checklists()) == 0 {
		return r.res, nil
	}

	if err := r.collectClaims(doc.Nodes, FileScopePath); err != nil {
		return nil, err
	}

	fileProject, err := r.resolveFileProject()
	if err != nil {
		return nil, err
	}

	if err := r.resolveNodes(doc.Nodes, fileProject); err != nil {
		return nil, err
	}
	return r.res, nil
}

func (r *resolver) resolveFileProject() (*Resolved, error) {
	obj := &Resolved{
		Type:        model.TypeProject,
		Document:    r.doc.Path,
		Name:        docTitle(r.doc),
		Display:     docTitle(r.doc),
		SlugPath:    FileScopePath,
		OrdinalPath: FileScopePath,
	}

	id, found, err := r.idx.LookupSlugPath(r.doc.Path, FileScopePath)
	if err != nil {
		return nil, err
	}
	if found {
		obj.ID = id
	} else {
		seq, err := r.idx.NextSequence(model.FamilyProject)
		if err != nil {
			return nil, err
		}
		obj.ID = model.ID{Family: model.FamilyProject, Parts: []int{seq}}
		obj.Fresh = true
	}
	r.used[obj.ID.String()] = true

	r.res.Objects = append(r.res.Objects, obj)
	return obj, nil
}

// resolveNodes walks a node list within the given project scope. Material
// headings open child scopes; prose headings pass the scope through
// unchanged; checklist lines become tasks in the current scope.
func (r *resolver) resolveNodes(nodes []parser.Node, scope *Resolved) error {
	type taskFrame struct {
		indent int
		res    *Resolved
	}
	var taskStack []taskFrame
	materialOrdinal := 0
	taskOrdinal := 0

	for _, n := range nodes {
		switch node := n.(type) {
		case *parser.HeadingNode:
			taskStack = taskStack[:0]
			if !containsChecklist(node) {
				if err := r.resolveNodes(node.Children, scope); err != nil {
					return err
				}
				continue
			}
			materialOrdinal++
			child, err := r.resolveHeading(node, scope, materialOrdinal)
			if err != nil {
				return err
			}
			if err := r.resolveNodes(node.Children, child); err != nil {
				return err
			}

		case *parser.ChecklistNode:
			for len(taskStack) > 0 && taskStack[len(taskStack)-1].indent >= node.Indent {
				taskStack = taskStack[:len(taskStack)-1]
			}
			var parentTask *Resolved
			if len(taskStack) > 0 {
				parentTask = taskStack[len(taskStack)-1].res
			}
			taskOrdinal++
			task, err := r.resolveChecklist(node, scope, parentTask, taskOrdinal)
			if err != nil {
				return err
			}
			if task != nil {
				taskStack = append(taskStack, taskFrame{indent: node.Indent, res: task})
			}

		case *parser.PlainNode:
			// Prose; nothing to identify.
		}
	}
	return nil
}

func (r *resolver) resolveHeading(node *parser.HeadingNode, scope *Resolved, ordinal int) (*Resolved, error) {
	obj := &Resolved{
		ParentID:    scope.ID,
		Type:        model.TypeProject,
		Document:    r.doc.Path,
		Name:        parser.StripTokens(node.Text),
		Display:     node.Text,
		Tags:        node.Tokens.Tags,
		Mentions:    node.Tokens.Mentions,
		SlugPath:    childSlugPath(scope.SlugPath, node.Text),
		OrdinalPath: childOrdinalPath(scope.OrdinalPath, ordinal),
		LineNo:      node.LineNo,
	}

	id, err := r.resolveStructural(obj.SlugPath, obj.OrdinalPath, scope.ID, model.FamilyProject)
	if err != nil {
		return nil, err
	}
	if id.IsZero() {
		id, err = r.freshChild(scope.ID)
		if err != nil {
			return nil, err
		}
		obj.Fresh = true
	}
	obj.ID = id
	r.noteChildSeq(id)

	r.res.Objects = append(r.res.Objects, obj)
	return obj, nil
}

func (r *resolver) resolveChecklist(node *parser.ChecklistNode, scope, parentTask *Resolved, ordinal int) (*Resolved, error) {
	obj := &Resolved{
		ParentID:    scope.ID,
		Type:        model.TypeTask,
		Document:    r.doc.Path,
		Name:        parser.StripTokens(node.Text),
		Display:     node.Text,
		Checked:     node.Checked,
		Tags:        node.Tokens.Tags,
		Mentions:    node.Tokens.Mentions,
		SlugPath:    taskSlugPath(scope.SlugPath, node.Text),
		OrdinalPath: taskOrdinalPath(scope.OrdinalPath, ordinal),
		LineNo:      node.LineNo,
	}
	if parentTask != nil {
		obj.ParentID = parentTask.ID
	}

	structural, err := r.resolveStructural(obj.SlugPath, obj.OrdinalPath, obj.ParentID, model.FamilyTask)
	if err != nil {
		return nil, err
	}

	// An embedded annotation is authoritative regardless of where structural
	// inference would place the line.
	if node.Tokens.ObjectID != "" {
		embedded, err := model.ParseID(node.Tokens.ObjectID)
		if err != nil {
			r.res.Orphans = append(r.res.Orphans, Orphan{
				Document: r.doc.Path,
				LineNo:   node.LineNo,
				Text:     node.Text,
				Reason:   fmt.Sprintf("unparseable id annotation: %v", err),
			})
			return nil, nil
		}
		// A line whose structural parent sits at or below the annotated id
		// would make the object its own ancestor. Queue it for confirmation
		// instead of absorbing the cycle.
		if obj.ParentID.Equal(embedded) || obj.ParentID.IsDescendantOf(embedded) {
			r.res.Orphans = append(r.res.Orphans, Orphan{
				Document: r.doc.Path,
				LineNo:   node.LineNo,
				Text:     node.Text,
				Reason:   (&model.CycleError{ID: embedded, Parent: obj.ParentID}).Error(),
			})
			return nil, nil
		}
		if !structural.IsZero() && !structural.Equal(embedded) {
			r.res.Conflicts = append(r.res.Conflicts, Conflict{
				Document:   r.doc.Path,
				LineNo:     node.LineNo,
				Embedded:   embedded,
				Structural: structural,
			})
		}
		obj.ID = embedded
		obj.Type = embedded.Family.Type()
	} else if !structural.IsZero() {
		obj.ID = structural
	} else {
		id, err := r.freshTask(parentTask)
		if err != nil {
			return nil, err
		}
		obj.ID = id
		obj.Fresh = true
	}
	r.noteChildSeq(obj.ID)

	r.res.Objects = append(r.res.Objects, obj)
	return obj, nil
}

// collectClaims walks the tree before resolution and records every id that
// a slug-path lookup or embedded annotation will take, so the ordinal
// fallback cannot reassign them.
func (r *resolver) collectClaims(nodes []parser.Node, scopeSlug string) error {
	for _, n := range nodes {
		switch node := n.(type) {
		case *parser.HeadingNode:
			if !containsChecklist(node) {
				if err := r.collectClaims(node.Children, scopeSlug); err != nil {
					return err
				}
				continue
			}
			path := childSlugPath(scopeSlug, node.Text)
			if id, found, err := r.idx.LookupSlugPath(r.doc.Path, path); err != nil {
				return err
			} else if found {
				r.claimed[id.String()] = true
			}
			if err := r.collectClaims(node.Children, path); err != nil {
				return err
			}

		case *parser.ChecklistNode:
			if node.Tokens.ObjectID != "" {
				if id, err := model.ParseID(node.Tokens.ObjectID); err == nil {
					r.claimed[id.String()] = true
					continue
				}
			}
			path := taskSlugPath(scopeSlug, node.Text)
			if id, found, err := r.idx.LookupSlugPath(r.doc.Path, path); err != nil {
				return err
			} else if found {
				r.claimed[id.String()] = true
			}
		}
	}
	return nil
}

// resolveStructural tries the stored fingerprints for a position. Only ids
// of the expected family are accepted; the ordinal fallback additionally
// refuses ids claimed by another position in this document.
func (r *resolver) resolveStructural(slugPath, ordinalPath string, parent model.ID, family model.Family) (model.ID, error) {
	if id, found, err := r.idx.LookupSlugPath(r.doc.Path, slugPath); err != nil {
		return model.ID{}, err
	} else if found && id.Family == family && !r.used[id.String()] {
		return id, nil
	}
	if id, found, err := r.idx.LookupOrdinalPath(r.doc.Path, ordinalPath); err != nil {
		return model.ID{}, err
	} else if found && id.Family == family && !r.claimed[id.String()] && !r.used[id.String()] {
		return id, nil
	}
	return model.ID{}, nil
}

// freshChild issues the next unused sibling sequence under parent, never
// renumbering ids issued earlier.
func (r *resolver) freshChild(parent model.ID) (model.ID, error) {
	issued, err := r.idx.MaxIssuedChild(parent)
	if err != nil {
		return model.ID{}, err
	}
	seen := r.maxChildSeq[parent.String()]
	if issued > seen {
		seen = issued
	}
	return parent.Child(seen + 1), nil
}

func (r *resolver) freshTask(parentTask *Resolved) (model.ID, error) {
	if parentTask != nil && parentTask.ID.Family == model.FamilyTask {
		return r.freshChild(parentTask.ID)
	}
	seq, err := r.idx.NextSequence(model.FamilyTask)
	if err != nil {
		return model.ID{}, err
	}
	return model.ID{Family: model.FamilyTask, Parts: []int{seq}}, nil
}

func (r *resolver) noteChildSeq(id model.ID) {
	r.used[id.String()] = true
	parent := id.Parent()
	if parent.IsZero() {
		return
	}
	seq := id.Parts[len(id.Parts)-1]
	if seq > r.maxChildSeq[parent.String()] {
		r.maxChildSeq[parent.String()] = seq
	}
}

func containsChecklist(h *parser.HeadingNode) bool {
	for _, n := range h.Children {
		switch node := n.(type) {
		case *parser.ChecklistNode:
			return true
		case *parser.HeadingNode:
			if containsChecklist(node) {
				return true
			}
		}
	}
	return false
}
