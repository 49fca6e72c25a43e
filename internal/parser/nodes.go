// Package parser turns raw markdown surface text into a tree of structural
// nodes. Parsing is pure: it never touches the ledger and never writes.
package parser

// Node is a structural node in a parsed document. Exactly three kinds exist:
// HeadingNode, ChecklistNode, and PlainNode. Consumers switch exhaustively on
// the concrete type rather than sniffing line text.
type Node interface {
	node()
	Line() int
}

// HeadingNode is a markdown heading and everything it encloses: the plain and
// checklist lines that follow it, plus nested headings, up to the next
// heading of equal or shallower depth.
type HeadingNode struct {
	Depth    int // count of leading '#' characters
	Text     string
	Tokens   Tokens
	LineNo   int
	Children []Node
}

// ChecklistNode is a `- [ ]` / `- [x]` line with its inline tokens.
type ChecklistNode struct {
	Checked bool
	Text    string // raw text after the marker, tokens included
	Indent  int    // leading spaces; nested checklists are subtasks
	Tokens  Tokens
	LineNo  int
}

// PlainNode is any other line, retained verbatim. Malformed checklist syntax
// lands here with an accompanying ParseWarning.
type PlainNode struct {
	Text   string
	LineNo int
}

func (h *HeadingNode) node()   {}
func (c *ChecklistNode) node() {}
func (p *PlainNode) node()     {}

func (h *HeadingNode) Line() int   { return h.LineNo }
func (c *ChecklistNode) Line() int { return c.LineNo }
func (p *PlainNode) Line() int     { return p.LineNo }

// Tokens are the inline annotations extracted from a line.
type Tokens struct {
	Tags     []string // #Word, leading '#' stripped
	Mentions []string // @Handle, '@' retained
	ObjectID string   // explicit [Object ID: T5] / {T5} annotation, if any
}

// ParseWarning reports a recoverable syntax problem. The offending line is
// retained as a PlainNode for manual reconciliation; nothing is dropped.
type ParseWarning struct {
	Document string
	LineNo   int
	Text     string
	Reason   string
}

// Document is a fully parsed markdown surface.
type Document struct {
	Path        string // relative to the workspace root
	Frontmatter *Frontmatter
	Nodes       []Node // top-level nodes; headings own their contents
	Warnings    []ParseWarning
}

// Walk visits every node in the document depth-first, in document order.
func (d *Document) Walk(fn func(n Node, parents []*HeadingNode)) {
	var walk func(nodes []Node, parents []*HeadingNode)
	walk = func(nodes []Node, parents []*HeadingNode) {
		for _, n := range nodes {
			fn(n, parents)
			if h, ok := n.(*HeadingNode); ok {
				walk(h.Children, append(parents, h))
			}
		}
	}
	walk(d.Nodes, nil)
}

// Checklists returns all checklist nodes with their enclosing heading chain.
func (d *Document) Checklists() []ChecklistWithContext {
	var out []ChecklistWithContext
	d.Walk(func(n Node, parents []*HeadingNode) {
		if c, ok := n.(*ChecklistNode); ok {
			chain := make([]*HeadingNode, len(parents))
			copy(chain, parents)
			out = append(out, ChecklistWithContext{Node: c, Headings: chain})
		}
	})
	return out
}

// ChecklistWithContext pairs a checklist line with the headings above it,
// outermost first.
type ChecklistWithContext struct {
	Node     *ChecklistNode
	Headings []*HeadingNode
}
