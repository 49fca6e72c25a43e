package ledger

import (
	"errors"
	"testing"

	"github.com/mikesturm/kinetic/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func apply(t *testing.T, s *Store, muts ...Mutation) {
	t.Helper()
	if err := s.Apply(muts); err != nil {
		t.Fatal(err)
	}
}

func mutation(id, name string, typ model.ObjectType) Mutation {
	obj := model.NewObject(model.MustParseID(id), typ, name)
	return Mutation{Object: obj}
}

func TestApplyRoundTrip(t *testing.T) {
	s := openTestStore(t)

	obj := model.NewObject(model.MustParseID("T1"), model.TypeTask, "Sketch onboarding flow")
	obj.ParentID = model.MustParseID("P2")
	obj.Tags = []string{"Big3", "S3-2"}
	obj.Notes = "First thought.\n\nSecond thought."
	obj.Origin = model.Location{Document: "Surfaces/Launch.md", Path: "phase-1#sketch-onboarding-flow"}

	apply(t, s, Mutation{
		Object:      obj,
		Fingerprint: Fingerprint{Document: "Surfaces/Launch.md", SlugPath: "phase-1#sketch-onboarding-flow", OrdinalPath: "phase-1#t1"},
		History:     []HistoryEntry{{Field: "state", Old: "", New: "Active"}},
	})

	got, err := s.Get(obj.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CanonicalName != obj.CanonicalName || got.CanonicalChecksum != obj.CanonicalChecksum {
		t.Errorf("canonical fields did not round-trip: %+v", got)
	}
	if !got.ParentID.Equal(obj.ParentID) {
		t.Errorf("parent = %s", got.ParentID)
	}
	if got.BucketTag() != "S3-2" || len(got.ManualTags()) != 1 {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Notes != obj.Notes {
		t.Errorf("notes = %q", got.Notes)
	}
	if got.Origin != obj.Origin {
		t.Errorf("origin = %+v", got.Origin)
	}
	if got.CreatedAt != nil {
		t.Error("created_at fabricated for an object without one")
	}

	hist, err := s.History(obj.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].New != "Active" {
		t.Errorf("history = %+v", hist)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(model.MustParseID("T99")); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNextSequenceMonotonicPerFamily(t *testing.T) {
	s := openTestStore(t)

	for want := 1; want <= 3; want++ {
		got, err := s.NextSequence(model.FamilyProject)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("project seq = %d, want %d", got, want)
		}
	}

	got, err := s.NextSequence(model.FamilyTask)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("task seq = %d, families must count independently", got)
	}

	if _, err := s.NextSequence(model.Family('X')); err == nil {
		t.Error("invalid family accepted")
	}
}

func TestFingerprintLookups(t *testing.T) {
	s := openTestStore(t)

	mut := mutation("P1", "Launch Plan", model.TypeProject)
	mut.Fingerprint = Fingerprint{Document: "Surfaces/Launch.md", SlugPath: ".", OrdinalPath: "."}
	apply(t, s, mut)

	id, ok, err := s.LookupSlugPath("Surfaces/Launch.md", ".")
	if err != nil || !ok || id.String() != "P1" {
		t.Errorf("slug lookup = %v %v %v", id, ok, err)
	}
	id, ok, err = s.LookupOrdinalPath("Surfaces/Launch.md", ".")
	if err != nil || !ok || id.String() != "P1" {
		t.Errorf("ordinal lookup = %v %v %v", id, ok, err)
	}

	if _, ok, _ := s.LookupSlugPath("Surfaces/Other.md", "."); ok {
		t.Error("lookup matched across documents")
	}

	// Rename in place: fingerprint for the same object is replaced.
	mut.Fingerprint.SlugPath = "launch-plan-v2"
	apply(t, s, mut)
	if _, ok, _ := s.LookupSlugPath("Surfaces/Launch.md", "."); ok {
		t.Error("stale slug fingerprint survived replacement")
	}
	id, ok, _ = s.LookupSlugPath("Surfaces/Launch.md", "launch-plan-v2")
	if !ok || id.String() != "P1" {
		t.Errorf("fresh slug lookup = %v %v", id, ok)
	}
}

func TestMaxIssuedChild(t *testing.T) {
	s := openTestStore(t)
	apply(t, s,
		mutation("P1", "Launch Plan", model.TypeProject),
		mutation("P1.1", "Phase One", model.TypeProject),
		mutation("P1.2", "Phase Two", model.TypeProject),
		mutation("P1.2.1", "Prep", model.TypeProject),
	)

	tests := []struct {
		parent string
		want   int
	}{
		{"P1", 2},
		{"P1.2", 1},
		{"P1.1", 0},
		{"P9", 0},
	}
	for _, tt := range tests {
		got, err := s.MaxIssuedChild(model.MustParseID(tt.parent))
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("MaxIssuedChild(%s) = %d, want %d", tt.parent, got, tt.want)
		}
	}
}

func TestMaxIssuedChildCountsDeleted(t *testing.T) {
	s := openTestStore(t)
	apply(t, s,
		mutation("T1", "Parent", model.TypeTask),
		mutation("T1.1", "Subtask", model.TypeTask),
	)
	if err := s.RecordDeletion(model.MustParseID("T1.1"), "abandoned"); err != nil {
		t.Fatal(err)
	}

	got, err := s.MaxIssuedChild(model.MustParseID("T1"))
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("MaxIssuedChild = %d, deleted children must keep their numbers", got)
	}
}

func TestRecordDeletionAndResurrect(t *testing.T) {
	s := openTestStore(t)
	apply(t, s, mutation("G1", "Ship onboarding revamp", model.TypeGoal))
	id := model.MustParseID("G1")

	if err := s.RecordDeletion(id, "superseded by G2"); err != nil {
		t.Fatal(err)
	}

	obj, err := s.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if obj.State != model.StateDeleted {
		t.Errorf("state = %s", obj.State)
	}

	dels, err := s.Deletions()
	if err != nil {
		t.Fatal(err)
	}
	if len(dels) != 1 || dels[0].Reason != "superseded by G2" {
		t.Errorf("deletions = %+v", dels)
	}

	if err := s.Resurrect(id); err != nil {
		t.Fatal(err)
	}
	obj, _ = s.Get(id)
	if obj.State != model.StateActive {
		t.Errorf("resurrected state = %s", obj.State)
	}

	// Only Deleted objects can be resurrected.
	var invalid *model.InvalidTransitionError
	if err := s.Resurrect(id); !errors.As(err, &invalid) {
		t.Errorf("err = %v, want InvalidTransitionError", err)
	}

	hist, err := s.History(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 {
		t.Fatalf("history rows = %d, want delete then resurrect", len(hist))
	}
	if hist[0].New != "Deleted" || hist[1].New != "Active" {
		t.Errorf("history = %+v", hist)
	}
}

func TestQueriesByStateTypeParentTag(t *testing.T) {
	s := openTestStore(t)

	a := mutation("A1", "Finance", model.TypeArea)
	p := mutation("P1", "Launch Plan", model.TypeProject)
	p.Object.ParentID = model.MustParseID("A1")
	t1 := mutation("T1", "Call Dave about Margin", model.TypeTask)
	t1.Object.ParentID = model.MustParseID("P1")
	t1.Object.Tags = []string{"Big3", "S3-1"}
	t1.Object.State = model.StateInProgress
	apply(t, s, a, p, t1)

	inProgress, err := s.ByState(model.StateInProgress)
	if err != nil {
		t.Fatal(err)
	}
	if len(inProgress) != 1 || inProgress[0].ID.String() != "T1" {
		t.Errorf("ByState = %+v", inProgress)
	}

	projects, err := s.ByType(model.TypeProject)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 || projects[0].ID.String() != "P1" {
		t.Errorf("ByType = %+v", projects)
	}

	kids, err := s.ByParent(model.MustParseID("A1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(kids) != 1 || kids[0].ID.String() != "P1" {
		t.Errorf("ByParent = %+v", kids)
	}

	tagged, err := s.ByTag("big3")
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged) != 1 || tagged[0].ID.String() != "T1" {
		t.Errorf("ByTag = %+v", tagged)
	}
}

func TestBackRefs(t *testing.T) {
	s := openTestStore(t)
	apply(t, s, mutation("T2", "Send Report to Morgan", model.TypeTask))
	id := model.MustParseID("T2")

	if err := s.RecordBackRef(model.BackRef{ObjectID: id, Document: "Cards/2026-08-24-TodayCard.md"}); err != nil {
		t.Fatal(err)
	}

	refs, err := s.BackRefs(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].Document != "Cards/2026-08-24-TodayCard.md" {
		t.Errorf("backrefs = %+v", refs)
	}
	if refs[0].Render() != "(↳ Cards/2026-08-24-TodayCard.md)" {
		t.Errorf("render = %q", refs[0].Render())
	}
}
