package views

import (
	"strings"
	"time"

	"github.com/mikesturm/kinetic/internal/model"
)

// Projects renders Views/Projects.md: every live project as a section, its
// open and completed tasks beneath it, child projects nested one heading
// level deeper.
func Projects(objs []*model.Object) string {
	live := visible(objs)

	var b strings.Builder
	b.WriteString("# Projects\n")
	for _, proj := range live {
		if proj.Type != model.TypeProject {
			continue
		}
		if !proj.ParentID.IsZero() && proj.ParentID.Family == model.FamilyProject {
			continue // rendered under its parent
		}
		renderProject(&b, live, proj, 2)
	}
	return b.String()
}

func renderProject(b *strings.Builder, live []*model.Object, proj *model.Object, depth int) {
	b.WriteString("\n")
	b.WriteString(strings.Repeat("#", depth))
	b.WriteString(" ")
	b.WriteString(proj.ColloquialName)
	b.WriteString(" {")
	b.WriteString(proj.ID.String())
	b.WriteString("}\n")

	for _, child := range childrenOf(live, proj.ID) {
		if child.Type == model.TypeTask {
			b.WriteString(taskLine(child, ""))
			b.WriteString("\n")
		}
	}
	for _, child := range childrenOf(live, proj.ID) {
		if child.Type == model.TypeProject {
			renderProject(b, live, child, depth+1)
		}
	}
}

// Goals renders Views/Goals.md: each goal with its child projects and tasks.
func Goals(objs []*model.Object) string {
	return groupedView(objs, "Goals", model.TypeGoal)
}

// Areas renders Views/AoRs.md: each area of responsibility with its children.
func Areas(objs []*model.Object) string {
	return groupedView(objs, "Areas of Responsibility", model.TypeArea)
}

func groupedView(objs []*model.Object, title string, typ model.ObjectType) string {
	live := visible(objs)

	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(title)
	b.WriteString("\n")
	for _, parent := range live {
		if parent.Type != typ {
			continue
		}
		b.WriteString("\n## ")
		b.WriteString(parent.ColloquialName)
		b.WriteString(" {")
		b.WriteString(parent.ID.String())
		b.WriteString("}\n")

		for _, child := range childrenOf(live, parent.ID) {
			if child.Type == model.TypeTask {
				b.WriteString(taskLine(child, ""))
			} else {
				b.WriteString(bulletLine(child))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Schedule renders the S3 schedule surface: one section per bucket holding
// the open tasks tagged into it, and an After section for open tasks with no
// bucket yet. The document round-trips: every line is id-annotated, so edits
// made here flow back into the ledger on the next sync.
func Schedule(objs []*model.Object, scheduleDoc string) string {
	live := visible(objs)

	var b strings.Builder
	b.WriteString("# S3\n")
	for _, bucket := range buckets {
		b.WriteString("\n## ")
		b.WriteString(bucket.Heading)
		b.WriteString("\n")
		for _, obj := range live {
			if obj.Type == model.TypeTask && obj.State.Open() && obj.BucketTag() == bucket.Tag {
				b.WriteString(taskLine(obj, scheduleDoc))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n## ")
	b.WriteString(AfterHeading)
	b.WriteString("\n")
	for _, obj := range live {
		if obj.Type == model.TypeTask && obj.State.Open() && obj.BucketTag() == "" {
			b.WriteString(taskLine(obj, scheduleDoc))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Today renders the Views/Today.md snapshot: in-progress work first, then
// whatever is scheduled into today's bucket.
func Today(objs []*model.Object, date time.Time) string {
	live := visible(objs)

	var b strings.Builder
	b.WriteString("# Today (")
	b.WriteString(date.Format("2006-01-02"))
	b.WriteString(")\n\n## In Progress\n")
	for _, obj := range live {
		if obj.Type == model.TypeTask && obj.State == model.StateInProgress {
			b.WriteString(taskLine(obj, ""))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Scheduled\n")
	for _, obj := range live {
		if obj.Type == model.TypeTask && obj.State == model.StateActive && obj.BucketTag() == "S3-1" {
			b.WriteString(taskLine(obj, ""))
			b.WriteString("\n")
		}
	}
	return b.String()
}
