// Package engine runs the sync pipeline: parse every surface, resolve
// identities, merge fields into the ledger, audit the result, and commit the
// rewritten documents and regenerated views. The ledger transaction lands
// before any document write, so a crash mid-commit can lose generated
// markdown but never record.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/mikesturm/kinetic/internal/audit"
	"github.com/mikesturm/kinetic/internal/commit"
	"github.com/mikesturm/kinetic/internal/config"
	"github.com/mikesturm/kinetic/internal/identity"
	"github.com/mikesturm/kinetic/internal/ledger"
	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/parser"
	"github.com/mikesturm/kinetic/internal/router"
	"github.com/mikesturm/kinetic/internal/surface"
)

// Engine wires the sync pipeline's collaborators together.
type Engine struct {
	Layout surface.Layout
	Store  *ledger.Store
	Log    *audit.Logger
	Config *config.WorkspaceConfig

	// Now is the clock, overridable in tests. Nil means time.Now.
	Now func() time.Time
}

// Result is the outcome of one sync run.
type Result struct {
	Documents int
	Created   int
	Updated   int

	Conflicts     []identity.Conflict
	NoteConflicts []router.NoteConflict
	Orphans       []identity.Orphan
	Warnings      []parser.ParseWarning

	Report *audit.Report
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// document is one walked source with the stamp of exactly the bytes parsed.
type document struct {
	rel     string
	abs     string
	doc     *parser.Document
	content []byte
	stamp   commit.Stamp
}

// run accumulates one sync's state. pending tracks the latest in-run value of
// every touched object, so a task that appears in both a surface and a card
// merges against the already-merged value, not a stale ledger row.
type run struct {
	result  *Result
	muts    []ledger.Mutation
	pending map[string]*model.Object

	// corrupt holds ids whose stored row failed checksum verification this
	// run. They are withheld from every merge until a human resolves them.
	corrupt map[string]bool

	archiveAppends map[string][]string // archive doc -> lines to append
	docWrites      []plannedWrite
	backRefs       []model.BackRef

	// scheduleStamp holds the walked stamp of the schedule surface, so its
	// regeneration aborts if the user edited it mid-run.
	scheduleStamp *commit.Stamp
}

type plannedWrite struct {
	rel        string
	data       []byte
	stamp      commit.Stamp
	appendOnly bool
}

// get returns the freshest value of an object: this run's merge result if the
// object was already touched, otherwise the ledger row. A nil object with
// ok set means the id was never issued. A stored row whose canonical checksum
// fails verification is fatal for that object only: it is reported as corrupt,
// withheld from merging, and ok is false.
func (r *run) get(store *ledger.Store, id model.ID) (obj *model.Object, ok bool, err error) {
	if obj, hit := r.pending[id.String()]; hit {
		return obj, true, nil
	}
	if r.corrupt[id.String()] {
		return nil, false, nil
	}
	obj, err = store.Get(id)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	if cerr := audit.VerifyObject(obj); cerr != nil {
		r.corrupt[id.String()] = true
		return nil, false, nil
	}
	return obj, true, nil
}

func (r *run) add(mut ledger.Mutation) {
	r.muts = append(r.muts, mut)
	r.pending[mut.Object.ID.String()] = mut.Object
}

// Sync runs the full pipeline once.
func (e *Engine) Sync() (*Result, error) {
	res := &Result{}
	r := &run{
		result:         res,
		pending:        make(map[string]*model.Object),
		corrupt:        make(map[string]bool),
		archiveAppends: make(map[string][]string),
	}

	var generics, cards, archives []document
	var schedule *document

	err := e.Layout.WalkDocuments(func(w surface.WalkResult) error {
		if w.Error != nil {
			return fmt.Errorf("read %s: %w", w.RelativePath, w.Error)
		}
		if w.RelativePath == surface.InboxFile {
			return nil // drained by capture, never synced in place
		}

		res.Documents++
		res.Warnings = append(res.Warnings, w.Document.Warnings...)

		d := document{
			rel:     w.RelativePath,
			abs:     w.Path,
			doc:     w.Document,
			content: w.Content,
			stamp:   commit.StampBytes(w.Content),
		}
		switch {
		case d.rel == surface.ScheduleFile:
			schedule = &d
		case d.rel == surface.InboxArchive:
			// Capture history, not a completion archive; drained objects
			// referenced here are still live work.
		case surface.IsCard(d.rel):
			cards = append(cards, d)
		case surface.IsArchive(d.rel):
			archives = append(archives, d)
		default:
			generics = append(generics, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range generics {
		if err := e.surfacePass(r, &generics[i]); err != nil {
			return nil, err
		}
	}
	for i := range cards {
		if err := e.cardPass(r, &cards[i]); err != nil {
			return nil, err
		}
	}
	if schedule != nil {
		if err := e.schedulePass(r, schedule); err != nil {
			return nil, err
		}
	}
	for i := range archives {
		if err := e.archivePass(r, &archives[i]); err != nil {
			return nil, err
		}
	}

	// Ledger first. Everything after this point only rewrites markdown.
	if err := e.Store.Apply(r.muts); err != nil {
		return nil, err
	}
	for _, ref := range r.backRefs {
		if err := e.Store.RecordBackRef(ref); err != nil {
			return nil, err
		}
	}
	e.logRun(r)

	report, err := e.auditPass()
	if err != nil {
		return nil, err
	}
	res.Report = report

	plan, err := e.buildPlan(r)
	if err != nil {
		return nil, err
	}
	coord := &commit.Coordinator{Log: e.Log}
	if err := coord.Commit(plan); err != nil {
		return res, err
	}
	return res, nil
}

func (e *Engine) logRun(r *run) {
	if e.Log == nil {
		return
	}
	_ = e.Log.Log(audit.Entry{
		Operation: "sync",
		Detail:    fmt.Sprintf("%d objects touched", len(r.muts)),
		Extra: map[string]any{
			"created": r.result.Created,
			"updated": r.result.Updated,
			"orphans": len(r.result.Orphans),
		},
	})
}

func (e *Engine) auditPass() (*audit.Report, error) {
	objects, err := e.Store.All()
	if err != nil {
		return nil, err
	}

	auditor := &audit.Auditor{
		Threshold:     e.Config.DriftThreshold(audit.DefaultDriftThreshold),
		NamingPattern: e.Config.NamingPattern(audit.DefaultNamingPattern),
	}
	report := auditor.Audit(objects)

	if e.Log != nil {
		for _, c := range report.Corruptions {
			_ = e.Log.LogCorruption(c)
		}
	}
	return report, nil
}
