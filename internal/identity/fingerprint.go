// Package identity maps parsed document trees onto stable object
// identifiers. Assignment follows the fewest-hashtags rule: the shallowest
// headings that contain checklist work become a document's root projects,
// deeper headings become child projects, and checklist lines become tasks
// under their nearest enclosing heading.
package identity

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/mikesturm/kinetic/internal/parser"
)

// Structural fingerprints make re-assignment stable. Each object gets two
// keys within its document:
//
//   - a slug path built from heading text (and, for tasks, the line text),
//     which survives reordering and sibling insertion;
//   - an ordinal path built from sibling position among material nodes,
//     which survives renames.
//
// Lookup tries the slug path first, then the ordinal path, and only then
// assigns a fresh sequence. Previously issued ids are never renumbered.

// FileScopePath is the fingerprint path of a document's file-scope project.
const FileScopePath = "."

func headingSlug(text string) string {
	s := slug.Make(parser.StripTokens(text))
	if s == "" {
		s = "section"
	}
	return s
}

func childSlugPath(parentPath, text string) string {
	if parentPath == FileScopePath {
		return headingSlug(text)
	}
	return parentPath + "/" + headingSlug(text)
}

func childOrdinalPath(parentPath string, ordinal int) string {
	if parentPath == FileScopePath {
		return strconv.Itoa(ordinal)
	}
	return parentPath + "/" + strconv.Itoa(ordinal)
}

func taskSlugPath(scopePath, text string) string {
	s := slug.Make(parser.StripTokens(text))
	if s == "" {
		s = "item"
	}
	return scopePath + "#" + s
}

func taskOrdinalPath(scopePath string, ordinal int) string {
	return scopePath + "#" + strconv.Itoa(ordinal)
}

// docTitle derives a document's canonical title: the first depth-1 heading,
// or the file stem with separators spaced out.
func docTitle(doc *parser.Document) string {
	for _, n := range doc.Nodes {
		if h, ok := n.(*parser.HeadingNode); ok && h.Depth == 1 {
			return parser.StripTokens(h.Text)
		}
	}
	base := doc.Path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".md")
	return strings.Join(strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_'
	}), " ")
}
