package parser

import (
	"strings"
	"testing"
)

const phasedProject = `# Launch Plan

## Phase 1

### UX

- [ ] Sketch onboarding flow
- [x] Interview pilot users

## Phase 2

### Backend

- [ ] Design schema
- [ ] Write migration tool
`

func TestParseTreeShape(t *testing.T) {
	doc, err := Parse(phasedProject, "Surfaces/Launch.md", "")
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Nodes) != 1 {
		t.Fatalf("top-level nodes = %d, want 1", len(doc.Nodes))
	}
	root, ok := doc.Nodes[0].(*HeadingNode)
	if !ok || root.Depth != 1 {
		t.Fatalf("root = %#v, want depth-1 heading", doc.Nodes[0])
	}
	if len(root.Children) != 2 {
		t.Fatalf("root children = %d, want 2 phases", len(root.Children))
	}

	phase1 := root.Children[0].(*HeadingNode)
	if phase1.Text != "Phase 1" || phase1.Depth != 2 {
		t.Errorf("phase1 = %q depth %d", phase1.Text, phase1.Depth)
	}
	ux := phase1.Children[0].(*HeadingNode)
	if ux.Text != "UX" || len(ux.Children) != 2 {
		t.Errorf("ux = %q with %d children, want 2 checklists", ux.Text, len(ux.Children))
	}

	first := ux.Children[0].(*ChecklistNode)
	if first.Checked || first.Text != "Sketch onboarding flow" {
		t.Errorf("first checklist = %+v", first)
	}
	second := ux.Children[1].(*ChecklistNode)
	if !second.Checked {
		t.Error("second checklist should be checked")
	}
}

func TestParseChecklists(t *testing.T) {
	doc, err := Parse(phasedProject, "Surfaces/Launch.md", "")
	if err != nil {
		t.Fatal(err)
	}

	items := doc.Checklists()
	if len(items) != 4 {
		t.Fatalf("checklists = %d, want 4", len(items))
	}

	// Heading chains are outermost-first.
	last := items[3]
	var chain []string
	for _, h := range last.Headings {
		chain = append(chain, h.Text)
	}
	if strings.Join(chain, "/") != "Launch Plan/Phase 2/Backend" {
		t.Errorf("heading chain = %v", chain)
	}
}

func TestParseMalformedChecklist(t *testing.T) {
	content := "## Inbox\n\n- [ ] good line\n- [ bad line\n- [] missing marker\n"
	doc, err := Parse(content, "Surfaces/Inbox.md", "")
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Warnings) != 2 {
		t.Fatalf("warnings = %d, want 2: %+v", len(doc.Warnings), doc.Warnings)
	}
	if doc.Warnings[0].Reason != "unbalanced brackets in checklist marker" {
		t.Errorf("first warning = %q", doc.Warnings[0].Reason)
	}
	if doc.Warnings[1].Reason != "missing state marker in checklist" {
		t.Errorf("second warning = %q", doc.Warnings[1].Reason)
	}

	// Malformed lines are retained as plain text, not dropped.
	heading := doc.Nodes[0].(*HeadingNode)
	plains := 0
	for _, n := range heading.Children {
		if _, ok := n.(*PlainNode); ok {
			plains++
		}
	}
	if plains != 2 {
		t.Errorf("retained plain lines = %d, want 2", plains)
	}
}

func TestParseFrontmatter(t *testing.T) {
	content := "---\ndate: 2026-08-25\nfocus: deep work\n---\n\n## Today\n\n- [ ] First task\n"
	doc, err := Parse(content, "Cards/2026-08-25-TodayCard.md", "")
	if err != nil {
		t.Fatal(err)
	}

	if doc.Frontmatter == nil {
		t.Fatal("frontmatter not parsed")
	}
	if doc.Frontmatter.Date != "2026-08-25" {
		t.Errorf("date = %q", doc.Frontmatter.Date)
	}

	items := doc.Checklists()
	if len(items) != 1 {
		t.Fatalf("checklists = %d, want 1", len(items))
	}
	// Line numbers account for the frontmatter block.
	if got := items[0].Node.LineNo; got != 8 {
		t.Errorf("checklist line = %d, want 8", got)
	}
}

func TestParseIgnoresCodeFences(t *testing.T) {
	content := "## Real\n\n```\n## Not a heading\n- [ ] not a task\n```\n\n- [ ] real task\n"
	doc, err := Parse(content, "Surfaces/Notes.md", "")
	if err != nil {
		t.Fatal(err)
	}

	headings := 0
	doc.Walk(func(n Node, _ []*HeadingNode) {
		if _, ok := n.(*HeadingNode); ok {
			headings++
		}
	})
	if headings != 1 {
		t.Errorf("headings = %d, want 1 (fenced heading ignored)", headings)
	}
	if items := doc.Checklists(); len(items) != 1 {
		t.Errorf("checklists = %d, want 1 (fenced checklist ignored)", len(items))
	}
}
