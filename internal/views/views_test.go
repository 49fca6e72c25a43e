package views

import (
	"strings"
	"testing"
	"time"

	"github.com/mikesturm/kinetic/internal/model"
)

func obj(id string, typ model.ObjectType, name string) *model.Object {
	return model.NewObject(model.MustParseID(id), typ, name)
}

func fixture() []*model.Object {
	p := obj("P1", model.TypeProject, "Launch Plan")
	phase := obj("P1.1", model.TypeProject, "Phase One")
	phase.ParentID = p.ID

	t1 := obj("T1", model.TypeTask, "Call Dave about Margin")
	t1.ParentID = phase.ID
	t1.Tags = []string{"Big3", "S3-1"}
	t1.Origin = model.Location{Document: "Surfaces/Launch.md"}

	t2 := obj("T2", model.TypeTask, "Send Report to Morgan")
	t2.ParentID = p.ID
	t2.State = model.StateCompleted

	t3 := obj("T3", model.TypeTask, "Sketch onboarding flow")
	t3.State = model.StateInProgress

	t4 := obj("T4", model.TypeTask, "Retired task")
	t4.State = model.StateArchived

	g := obj("G1", model.TypeGoal, "Ship onboarding revamp")
	p.ParentID = g.ID

	return []*model.Object{p, phase, t1, t2, t3, t4, g}
}

func TestProjectsView(t *testing.T) {
	out := Projects(fixture())

	if !strings.Contains(out, "## Launch Plan {P1}") {
		t.Errorf("missing project section:\n%s", out)
	}
	if !strings.Contains(out, "### Phase One {P1.1}") {
		t.Errorf("child project should nest one level deeper:\n%s", out)
	}
	if !strings.Contains(out, "- [ ] Call Dave about Margin #Big3 {T1}") {
		t.Errorf("task line mangled:\n%s", out)
	}
	if !strings.Contains(out, "- [x] Send Report to Morgan {T2}") {
		t.Errorf("completed task should render checked:\n%s", out)
	}
	if strings.Contains(out, "T4") {
		t.Error("archived task rendered")
	}
}

func TestViewsDeterministic(t *testing.T) {
	objs := fixture()
	if Projects(objs) != Projects(objs) {
		t.Error("Projects is not deterministic")
	}
	if Schedule(objs, "Surfaces/S3.md") != Schedule(objs, "Surfaces/S3.md") {
		t.Error("Schedule is not deterministic")
	}
}

func TestScheduleView(t *testing.T) {
	out := Schedule(fixture(), "Surfaces/S3.md")

	today := sectionOf(out, "## Today")
	if !strings.Contains(today, "{T1}") {
		t.Errorf("S3-1 task missing from Today:\n%s", out)
	}
	if !strings.Contains(today, "(↳ Surfaces/Launch.md)") {
		t.Errorf("schedule line should carry the origin back-reference:\n%s", today)
	}

	after := sectionOf(out, "## After")
	if !strings.Contains(after, "{T3}") {
		t.Errorf("unbucketed open task missing from After:\n%s", out)
	}
	if strings.Contains(after, "{T2}") {
		t.Error("completed task rendered in schedule")
	}
}

func TestTodayView(t *testing.T) {
	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	out := Today(fixture(), date)

	if !strings.Contains(out, "# Today (2026-08-25)") {
		t.Errorf("missing dated title:\n%s", out)
	}
	if !strings.Contains(sectionOf(out, "## In Progress"), "{T3}") {
		t.Errorf("in-progress task missing:\n%s", out)
	}
	if !strings.Contains(sectionOf(out, "## Scheduled"), "{T1}") {
		t.Errorf("S3-1 task missing:\n%s", out)
	}
}

func TestGoalsAndAreas(t *testing.T) {
	out := Goals(fixture())
	if !strings.Contains(out, "## Ship onboarding revamp {G1}") {
		t.Errorf("goal section missing:\n%s", out)
	}
	if !strings.Contains(out, "- Launch Plan {P1}") {
		t.Errorf("child project bullet missing:\n%s", out)
	}

	a := obj("A1", model.TypeArea, "Finance")
	out = Areas([]*model.Object{a})
	if !strings.Contains(out, "## Finance {A1}") {
		t.Errorf("area section missing:\n%s", out)
	}
}

func TestBucketForHeading(t *testing.T) {
	tests := []struct {
		heading string
		tag     string
		ok      bool
	}{
		{"Today", "S3-1", true},
		{"up next", "S3-2", true},
		{"Next Few Days", "S3-3", true},
		{"This Week", "S3-4", true},
		{"Next Week", "S3-5", true},
		{"After", "", true},
		{"Someday", "", false},
	}
	for _, tt := range tests {
		tag, ok := BucketForHeading(tt.heading)
		if tag != tt.tag || ok != tt.ok {
			t.Errorf("BucketForHeading(%q) = %q %v, want %q %v", tt.heading, tag, ok, tt.tag, tt.ok)
		}
	}
}

// sectionOf returns the text between a heading and the next heading.
func sectionOf(doc, heading string) string {
	i := strings.Index(doc, heading)
	if i < 0 {
		return ""
	}
	rest := doc[i+len(heading):]
	if j := strings.Index(rest, "\n## "); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
