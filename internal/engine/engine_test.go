package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mikesturm/kinetic/internal/config"
	"github.com/mikesturm/kinetic/internal/ledger"
	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/surface"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	layout := surface.Layout{Root: t.TempDir()}
	if err := layout.Init(); err != nil {
		t.Fatal(err)
	}
	store, err := ledger.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return &Engine{
		Layout: layout,
		Store:  store,
		Config: &config.WorkspaceConfig{},
		Now:    func() time.Time { return time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC) },
	}
}

func writeDoc(t *testing.T, e *Engine, rel, content string) {
	t.Helper()
	abs := e.Layout.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readDoc(t *testing.T, e *Engine, rel string) string {
	t.Helper()
	data, err := os.ReadFile(e.Layout.Abs(rel))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func mustGet(t *testing.T, e *Engine, id string) *model.Object {
	t.Helper()
	obj, err := e.Store.Get(model.MustParseID(id))
	if err != nil {
		t.Fatalf("Get(%s): %v", id, err)
	}
	return obj
}

func TestSyncCreatesAndAnnotates(t *testing.T) {
	e := newTestEngine(t)
	writeDoc(t, e, "Surfaces/Launch.md",
		"- [ ] Call Dave about Margin #Big3\n- [ ] Send Report to Morgan\n")

	res, err := e.Sync()
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 3 { // file project plus two tasks
		t.Errorf("Created = %d, want 3", res.Created)
	}

	task := mustGet(t, e, "T1")
	if task.CanonicalName != "Call Dave about Margin" {
		t.Errorf("T1 canonical name = %q", task.CanonicalName)
	}
	if task.ParentID.String() != "P1" {
		t.Errorf("T1 parent = %s, want P1", task.ParentID)
	}
	if !task.HasTag("Big3") {
		t.Errorf("T1 tags = %v, want Big3", task.Tags)
	}

	launch := readDoc(t, e, "Surfaces/Launch.md")
	if !strings.Contains(launch, "Call Dave about Margin #Big3 {T1}") {
		t.Errorf("identity write-back missing:\n%s", launch)
	}

	schedule := readDoc(t, e, surface.ScheduleFile)
	if !strings.Contains(schedule, "{T1}") || !strings.Contains(schedule, "{T2}") {
		t.Errorf("regenerated schedule missing open tasks:\n%s", schedule)
	}
	if _, err := os.Stat(e.Layout.Abs("Views/Projects.md")); err != nil {
		t.Errorf("Projects view not generated: %v", err)
	}
}

func TestSyncIdempotent(t *testing.T) {
	e := newTestEngine(t)
	writeDoc(t, e, "Surfaces/Launch.md",
		"## Phase 1\n\n- [ ] Sketch onboarding flow\n- [x] Interview pilot users\n")

	if _, err := e.Sync(); err != nil {
		t.Fatal(err)
	}
	first := readDoc(t, e, "Surfaces/Launch.md")
	schedule := readDoc(t, e, surface.ScheduleFile)

	res, err := e.Sync()
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 0 || res.Updated != 0 {
		t.Errorf("second sync created %d, updated %d, want 0/0", res.Created, res.Updated)
	}
	if got := readDoc(t, e, "Surfaces/Launch.md"); got != first {
		t.Errorf("second sync rewrote the surface:\n%s", got)
	}
	if got := readDoc(t, e, surface.ScheduleFile); got != schedule {
		t.Errorf("second sync rewrote the schedule:\n%s", got)
	}
}

func TestCardCompletionMigratesToArchive(t *testing.T) {
	e := newTestEngine(t)
	card := "Cards/2026-08-25-TodayCard.md"
	writeDoc(t, e, card,
		"- [ ] Draft launch email\n- [x] Ship launch email\n")

	res, err := e.Sync()
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 2 {
		t.Errorf("Created = %d, want 2", res.Created)
	}

	open := mustGet(t, e, "T1")
	if open.State != model.StateInProgress {
		t.Errorf("card task state = %s, want InProgress", open.State)
	}

	done := mustGet(t, e, "T2")
	if done.State != model.StateArchived {
		t.Errorf("completed card task state = %s, want Archived", done.State)
	}
	if done.Origin.Document != "Archive/Cards.md" {
		t.Errorf("completed task origin = %q, want Archive/Cards.md", done.Origin.Document)
	}

	// The archived entry carries the card date and a back-reference to the
	// document the line came from.
	archive := readDoc(t, e, "Archive/Cards.md")
	if !strings.Contains(archive, "Ship launch email {T2} (2026-08-25) (↳ "+card+")") {
		t.Errorf("archived line missing date or origin reference:\n%s", archive)
	}

	got := readDoc(t, e, card)
	if strings.Contains(got, "Ship launch email") {
		t.Errorf("completed line still on card:\n%s", got)
	}
	if !strings.Contains(got, "Draft launch email {T1}") {
		t.Errorf("open line lost or unannotated:\n%s", got)
	}

	refs, err := e.Store.BackRefs(model.MustParseID("T2"))
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].Document != card {
		t.Errorf("backrefs = %+v, want one to %s", refs, card)
	}
}

func TestScheduleBucketPlacement(t *testing.T) {
	e := newTestEngine(t)
	task := model.NewObject(model.MustParseID("T1"), model.TypeTask, "Call Dave about Margin")
	if err := e.Store.Apply([]ledger.Mutation{{Object: task}}); err != nil {
		t.Fatal(err)
	}

	writeDoc(t, e, surface.ScheduleFile,
		"# S3\n\n## Up Next\n\n- [ ] Call Dave about Margin {T1}\n")
	if _, err := e.Sync(); err != nil {
		t.Fatal(err)
	}
	if got := mustGet(t, e, "T1").BucketTag(); got != "S3-2" {
		t.Errorf("bucket = %q, want S3-2", got)
	}

	// Checking the line off completes the task and clears its bucket.
	writeDoc(t, e, surface.ScheduleFile,
		"# S3\n\n## Up Next\n\n- [x] Call Dave about Margin {T1}\n")
	if _, err := e.Sync(); err != nil {
		t.Fatal(err)
	}
	done := mustGet(t, e, "T1")
	if done.State != model.StateCompleted {
		t.Errorf("state = %s, want Completed", done.State)
	}
	if got := done.BucketTag(); got != "" {
		t.Errorf("bucket = %q, want cleared", got)
	}
	if strings.Contains(readDoc(t, e, surface.ScheduleFile), "{T1}") {
		t.Error("completed task still rendered on schedule")
	}
}

func TestScheduleLineWithoutIDIsOrphaned(t *testing.T) {
	e := newTestEngine(t)
	writeDoc(t, e, surface.ScheduleFile,
		"# S3\n\n## Today\n\n- [ ] Mystery line\n")

	res, err := e.Sync()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Orphans) != 1 {
		t.Fatalf("orphans = %+v, want one", res.Orphans)
	}
	if res.Orphans[0].Reason != "schedule line without id annotation" {
		t.Errorf("orphan reason = %q", res.Orphans[0].Reason)
	}
}

func TestArchivePassSettlesState(t *testing.T) {
	e := newTestEngine(t)
	task := model.NewObject(model.MustParseID("T1"), model.TypeTask, "Send Report to Morgan")
	task.SetBucketTag("S3-1")
	if err := e.Store.Apply([]ledger.Mutation{{Object: task}}); err != nil {
		t.Fatal(err)
	}
	writeDoc(t, e, "Archive/Launch.md", "- [x] Send Report to Morgan {T1}\n")

	if _, err := e.Sync(); err != nil {
		t.Fatal(err)
	}
	got := mustGet(t, e, "T1")
	if got.State != model.StateArchived {
		t.Errorf("state = %s, want Archived", got.State)
	}
	if got.BucketTag() != "" {
		t.Errorf("bucket = %q, want cleared", got.BucketTag())
	}
}

func TestCaptureAppendsToInbox(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Capture("Buy milk"); err != nil {
		t.Fatal(err)
	}
	if err := e.Capture("p: Launch Revamp"); err != nil {
		t.Fatal(err)
	}
	got := readDoc(t, e, surface.InboxFile)
	want := "- [ ] Buy milk\n- [ ] p: Launch Revamp\n"
	if got != want {
		t.Errorf("inbox = %q, want %q", got, want)
	}
}

func TestDrainInbox(t *testing.T) {
	e := newTestEngine(t)
	writeDoc(t, e, surface.InboxFile,
		"- [ ] Call Dave about Margin\np: Launch Revamp\ng: Ship onboarding\n")

	res, err := e.Drain()
	if err != nil {
		t.Fatal(err)
	}
	if res.Captured != 3 {
		t.Fatalf("Captured = %d, want 3", res.Captured)
	}

	if got := mustGet(t, e, "T1"); got.Type != model.TypeTask || got.CanonicalName != "Call Dave about Margin" {
		t.Errorf("T1 = %+v", got)
	}
	if got := mustGet(t, e, "P1"); got.Type != model.TypeProject || got.CanonicalName != "Launch Revamp" {
		t.Errorf("P1 = %+v", got)
	}
	if got := mustGet(t, e, "G1"); got.Type != model.TypeGoal || got.CanonicalName != "Ship onboarding" {
		t.Errorf("G1 = %+v", got)
	}

	if got := readDoc(t, e, surface.InboxFile); got != "" {
		t.Errorf("inbox not emptied: %q", got)
	}
	archive := readDoc(t, e, surface.InboxArchive)
	for _, want := range []string{"Call Dave about Margin {T1}", "p: Launch Revamp {P1}", "g: Ship onboarding {G1}"} {
		if !strings.Contains(archive, want) {
			t.Errorf("inbox archive missing %q:\n%s", want, archive)
		}
	}
}

func TestDrainEmptyInboxIsNoop(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Drain()
	if err != nil {
		t.Fatal(err)
	}
	if res.Captured != 0 {
		t.Errorf("Captured = %d, want 0", res.Captured)
	}
}

func TestCorruptRowHaltsMergeForThatObjectOnly(t *testing.T) {
	e := newTestEngine(t)
	writeDoc(t, e, "Surfaces/Launch.md",
		"- [ ] Call Dave about Margin\n- [ ] Send Report to Morgan\n")
	if _, err := e.Sync(); err != nil {
		t.Fatal(err)
	}

	// Alter the immutable column behind the store's back.
	if _, err := e.Store.DB().Exec(
		`UPDATE objects SET canonical_name = 'tampered' WHERE id = 'T1'`); err != nil {
		t.Fatal(err)
	}

	writeDoc(t, e, "Surfaces/Launch.md",
		"- [x] Renamed line {T1}\n- [x] Send Report to Morgan {T2}\n")
	res, err := e.Sync()
	if err != nil {
		t.Fatal(err)
	}

	// The corrupted object keeps its pre-edit fields; its sibling merges.
	bad := mustGet(t, e, "T1")
	if bad.ColloquialName != "Call Dave about Margin" {
		t.Errorf("corrupted object absorbed rename: %q", bad.ColloquialName)
	}
	if bad.State != model.StateActive {
		t.Errorf("corrupted object absorbed state change: %s", bad.State)
	}
	if got := mustGet(t, e, "T2"); got.State != model.StateCompleted {
		t.Errorf("sibling state = %s, want Completed", got.State)
	}

	if res.Report == nil || len(res.Report.Corruptions) != 1 {
		t.Fatalf("report corruptions = %+v, want one", res.Report)
	}
	if res.Report.Corruptions[0].ID.String() != "T1" {
		t.Errorf("corruption id = %s, want T1", res.Report.Corruptions[0].ID)
	}
}

func TestCycleAnnotationIsOrphanedNotMerged(t *testing.T) {
	e := newTestEngine(t)
	writeDoc(t, e, "Surfaces/Launch.md",
		"- [ ] Assemble kit {T1.1}\n  - [ ] Unpack components {T1}\n")

	res, err := e.Sync()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Orphans) != 1 || !strings.Contains(res.Orphans[0].Reason, "cycle") {
		t.Fatalf("orphans = %+v, want one cycle rejection", res.Orphans)
	}
	if _, err := e.Store.Get(model.MustParseID("T1")); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("T1 landed in the ledger despite the cycle: %v", err)
	}
	if got := mustGet(t, e, "T1.1"); got.ParentID.String() != "P1" {
		t.Errorf("T1.1 parent = %s, want P1", got.ParentID)
	}
}

func TestMigratedOriginStaysSettled(t *testing.T) {
	e := newTestEngine(t)
	writeDoc(t, e, "Surfaces/Launch.md", "- [ ] Ship launch email\n")
	if _, err := e.Sync(); err != nil {
		t.Fatal(err)
	}

	writeDoc(t, e, "Cards/2026-08-25-TodayCard.md", "- [x] Ship launch email {T1}\n")
	if _, err := e.Sync(); err != nil {
		t.Fatal(err)
	}
	done := mustGet(t, e, "T1")
	if done.State != model.StateArchived || done.Origin.Document != "Archive/Cards.md" {
		t.Fatalf("after migration: state=%s origin=%q", done.State, done.Origin.Document)
	}

	// The next run settles the origin line's marker and moves nothing back.
	res, err := e.Sync()
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 0 {
		t.Errorf("no-op run updated %d objects", res.Updated)
	}
	if got := mustGet(t, e, "T1").Origin.Document; got != "Archive/Cards.md" {
		t.Errorf("origin drifted back to %q", got)
	}
	launch := readDoc(t, e, "Surfaces/Launch.md")
	if !strings.Contains(launch, "- [x] Ship launch email {T1}") {
		t.Errorf("origin line not settled:\n%s", launch)
	}

	// And the run after that changes nothing at all.
	schedule := readDoc(t, e, surface.ScheduleFile)
	res, err = e.Sync()
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 0 || res.Updated != 0 {
		t.Errorf("settled workspace created %d, updated %d", res.Created, res.Updated)
	}
	if got := readDoc(t, e, "Surfaces/Launch.md"); got != launch {
		t.Errorf("surface rewritten again:\n%s", got)
	}
	if got := readDoc(t, e, surface.ScheduleFile); got != schedule {
		t.Errorf("schedule rewritten again:\n%s", got)
	}
}
