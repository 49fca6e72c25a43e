// Package views rebuilds generated documents from ledger state. Every view is
// a pure function of the objects passed in: same ledger, same bytes, so
// re-running a sync never churns a view that nothing changed.
package views

import (
	"sort"
	"strings"

	"github.com/mikesturm/kinetic/internal/model"
)

// Schedule buckets in display order. The "After" section has no tag: it holds
// open tasks that haven't been pulled into the window yet.
var buckets = []struct {
	Heading string
	Tag     string
}{
	{"Today", "S3-1"},
	{"Up Next", "S3-2"},
	{"Next Few Days", "S3-3"},
	{"This Week", "S3-4"},
	{"Next Week", "S3-5"},
}

// AfterHeading is the schedule section for unscheduled open tasks.
const AfterHeading = "After"

// BucketForHeading maps a schedule heading to its bucket tag. The After
// section maps to the empty tag, which clears an object's bucket.
func BucketForHeading(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if strings.EqualFold(t, AfterHeading) {
		return "", true
	}
	for _, b := range buckets {
		if strings.EqualFold(t, b.Heading) {
			return b.Tag, true
		}
	}
	return "", false
}

// visible filters out objects that never render: archive and deletion hide an
// object from every view.
func visible(objs []*model.Object) []*model.Object {
	var out []*model.Object
	for _, obj := range objs {
		if obj.State == model.StateArchived || obj.State == model.StateDeleted {
			continue
		}
		out = append(out, obj)
	}
	sortByID(out)
	return out
}

func sortByID(objs []*model.Object) {
	sort.Slice(objs, func(i, j int) bool { return objs[i].ID.Less(objs[j].ID) })
}

func childrenOf(objs []*model.Object, parent model.ID) []*model.Object {
	var out []*model.Object
	for _, obj := range objs {
		if obj.ParentID.Equal(parent) {
			out = append(out, obj)
		}
	}
	return out
}

// taskLine renders a task as a checklist line. The id annotation makes the
// line self-identifying on re-parse; the back-reference points at the task's
// origin document when it differs from the view being rendered.
func taskLine(obj *model.Object, viewDoc string) string {
	marker := " "
	if obj.State == model.StateCompleted {
		marker = "x"
	}

	var b strings.Builder
	b.WriteString("- [")
	b.WriteString(marker)
	b.WriteString("] ")
	b.WriteString(obj.ColloquialName)
	for _, tag := range obj.ManualTags() {
		b.WriteString(" #")
		b.WriteString(tag)
	}
	b.WriteString(" {")
	b.WriteString(obj.ID.String())
	b.WriteString("}")
	if obj.Origin.Document != "" && obj.Origin.Document != viewDoc {
		b.WriteString(" ")
		b.WriteString(model.BackRef{Document: obj.Origin.Document}.Render())
	}
	return b.String()
}

// bulletLine renders a non-task object as a list entry.
func bulletLine(obj *model.Object) string {
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(obj.ColloquialName)
	b.WriteString(" {")
	b.WriteString(obj.ID.String())
	b.WriteString("}")
	return b.String()
}
