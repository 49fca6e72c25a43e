package router

import (
	"testing"

	"github.com/mikesturm/kinetic/internal/identity"
	"github.com/mikesturm/kinetic/internal/model"
)

func resolved(id, name string) *identity.Resolved {
	return &identity.Resolved{
		ID:       model.MustParseID(id),
		Type:     model.TypeTask,
		Document: "Surfaces/Launch.md",
		Name:     name,
		SlugPath: "phase-1#" + name,
	}
}

func TestMergeCreates(t *testing.T) {
	res := resolved("T1", "Sketch onboarding flow")
	res.Tags = []string{"Big3", "S3-2"}

	out := Merge(res, nil, Options{})
	if !out.Created {
		t.Fatal("expected creation")
	}
	obj := out.Object
	if obj.CanonicalName != "Sketch onboarding flow" {
		t.Errorf("canonical = %q", obj.CanonicalName)
	}
	if obj.CanonicalChecksum != model.Checksum(obj.CanonicalName) {
		t.Error("creation checksum not fixed")
	}
	if obj.State != model.StateActive {
		t.Errorf("state = %s", obj.State)
	}
	if obj.BucketTag() != "S3-2" {
		t.Errorf("bucket = %q", obj.BucketTag())
	}
	if got := obj.ManualTags(); len(got) != 1 || got[0] != "Big3" {
		t.Errorf("manual tags = %v", got)
	}
	if obj.Origin.Document != "Surfaces/Launch.md" {
		t.Errorf("origin = %+v", obj.Origin)
	}
	// No parser pathway populates these yet.
	if obj.CreatedAt != nil || obj.ModifiedAt != nil || len(obj.People) != 0 {
		t.Error("router fabricated values for unrouted fields")
	}
}

func TestMergeCanonicalNameIsOneWay(t *testing.T) {
	res := resolved("T1", "Sketch onboarding flow v2")
	current := model.NewObject(model.MustParseID("T1"), model.TypeTask, "Sketch onboarding flow")

	out := Merge(res, current, Options{})
	if out.Object.CanonicalName != "Sketch onboarding flow" {
		t.Error("canonical name must never be overwritten after creation")
	}
	if out.Object.ColloquialName != "Sketch onboarding flow v2" {
		t.Error("colloquial name should absorb the markdown edit")
	}
	if current.ColloquialName != "Sketch onboarding flow" {
		t.Error("merge mutated the ledger's object in place")
	}
}

func TestMergeCheckboxCompletes(t *testing.T) {
	res := resolved("T1", "Sketch onboarding flow")
	res.Checked = true
	current := model.NewObject(model.MustParseID("T1"), model.TypeTask, "Sketch onboarding flow")
	current.State = model.StateInProgress

	out := Merge(res, current, Options{})
	if out.Object.State != model.StateCompleted {
		t.Errorf("state = %s, want Completed", out.Object.State)
	}

	var stateChange *FieldChange
	for i := range out.Changes {
		if out.Changes[i].Field == FieldState {
			stateChange = &out.Changes[i]
		}
	}
	if stateChange == nil || stateChange.Old != "InProgress" {
		t.Errorf("state change not recorded: %+v", out.Changes)
	}
}

func TestMergeArchivedOriginIsSettled(t *testing.T) {
	res := resolved("T1", "Ship launch email")
	current := model.NewObject(model.MustParseID("T1"), model.TypeTask, "Ship launch email")
	current.State = model.StateArchived
	current.Origin = model.Location{Document: "Archive/Cards.md"}

	out := Merge(res, current, Options{})
	if out.Object.Origin.Document != "Archive/Cards.md" {
		t.Errorf("origin = %q, want it to stay in the archive", out.Object.Origin.Document)
	}
	if len(out.Changes) != 0 {
		t.Errorf("stale surface line produced changes: %+v", out.Changes)
	}
}

func TestMergeUncheckDoesNotReopen(t *testing.T) {
	res := resolved("T1", "Sketch onboarding flow")
	current := model.NewObject(model.MustParseID("T1"), model.TypeTask, "Sketch onboarding flow")
	current.State = model.StateCompleted

	out := Merge(res, current, Options{})
	if out.Object.State != model.StateCompleted {
		t.Errorf("unchecking must not reopen: state = %s", out.Object.State)
	}
}

func TestMergeBucketFromPlacement(t *testing.T) {
	res := resolved("T1", "Sketch onboarding flow")
	current := model.NewObject(model.MustParseID("T1"), model.TypeTask, "Sketch onboarding flow")
	current.Tags = []string{"deep-work", "S3-1"}

	bucket := "S3-4"
	out := Merge(res, current, Options{Bucket: &bucket})
	if out.Object.BucketTag() != "S3-4" {
		t.Errorf("bucket = %q, want S3-4", out.Object.BucketTag())
	}

	clear := ""
	out = Merge(res, current, Options{Bucket: &clear})
	if out.Object.BucketTag() != "" {
		t.Errorf("bucket = %q, want cleared", out.Object.BucketTag())
	}
}

func TestMergeNotesConflict(t *testing.T) {
	previous := "Call before Friday."
	ledger := "Call before Thursday."
	markdown := "Call before Saturday."

	merged, conflicts := MergeNotes(previous, ledger, markdown)
	if merged != markdown {
		t.Errorf("merged = %q, markdown must win", merged)
	}
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %d, want 1", len(conflicts))
	}
	if conflicts[0].Ledger != ledger {
		t.Errorf("conflict must preserve the losing value: %+v", conflicts[0])
	}
}

func TestMergeNotesOneSided(t *testing.T) {
	previous := "First thought.\n\nSecond thought."

	// Ledger-only edit survives a markdown re-sync.
	merged, conflicts := MergeNotes(previous, "First thought, refined.\n\nSecond thought.", previous)
	if len(conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %+v", conflicts)
	}
	if merged != "First thought, refined.\n\nSecond thought." {
		t.Errorf("merged = %q", merged)
	}

	// Markdown appends are kept.
	merged, conflicts = MergeNotes(previous, previous, previous+"\n\nThird thought.")
	if len(conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %+v", conflicts)
	}
	if merged != "First thought.\n\nSecond thought.\n\nThird thought." {
		t.Errorf("merged = %q", merged)
	}
}

func TestPolicyTable(t *testing.T) {
	tests := []struct {
		field Field
		want  Policy
	}{
		{FieldCanonicalName, PolicyMarkdownToLedger},
		{FieldState, PolicyMarkdownToLedger},
		{FieldObjectID, PolicyRoundTrip},
		{FieldNotes, PolicyRoundTrip},
		{FieldBucket, PolicyRoundTrip},
		{FieldPeople, PolicyNone},
		{FieldCreatedAt, PolicyNone},
	}
	for _, tt := range tests {
		if got := PolicyFor(tt.field); got != tt.want {
			t.Errorf("PolicyFor(%s) = %s, want %s", tt.field, got, tt.want)
		}
	}
}
