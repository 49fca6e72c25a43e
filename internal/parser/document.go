package parser

import (
	"path/filepath"
	"strings"
)

// Parse parses a markdown surface into a node tree. filePath is resolved
// relative to root for the document path; pass root == "" to use filePath
// as-is.
func Parse(content, filePath, root string) (*Document, error) {
	relativePath := filePath
	if root != "" {
		if rel, err := filepath.Rel(root, filePath); err == nil {
			relativePath = rel
		}
	}
	relativePath = filepath.ToSlash(relativePath)

	doc := &Document{Path: relativePath}

	fm, err := ParseFrontmatter(content)
	if err != nil {
		return nil, err
	}

	contentStartLine := 1
	body := content
	if fm != nil {
		doc.Frontmatter = fm
		contentStartLine = fm.EndLine + 1
		lines := strings.Split(content, "\n")
		if fm.EndLine < len(lines) {
			body = strings.Join(lines[fm.EndLine:], "\n")
		} else {
			body = ""
		}
	}

	headings := ExtractHeadings(body, contentStartLine)
	headingByLine := make(map[int]Heading, len(headings))
	for _, h := range headings {
		headingByLine[h.Line] = h
	}

	// Assemble the tree line by line: each heading owns everything after it
	// until a heading of equal or shallower depth.
	var stack []*HeadingNode
	appendNode := func(n Node) {
		if len(stack) == 0 {
			doc.Nodes = append(doc.Nodes, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	inFence := false
	for offset, line := range strings.Split(body, "\n") {
		lineNo := contentStartLine + offset

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			appendNode(&PlainNode{Text: line, LineNo: lineNo})
			continue
		}
		if inFence {
			appendNode(&PlainNode{Text: line, LineNo: lineNo})
			continue
		}

		if h, ok := headingByLine[lineNo]; ok {
			node := &HeadingNode{
				Depth:  h.Depth,
				Text:   h.Text,
				Tokens: ExtractTokens(h.Text),
				LineNo: h.Line,
			}
			for len(stack) > 0 && stack[len(stack)-1].Depth >= node.Depth {
				stack = stack[:len(stack)-1]
			}
			appendNode(node)
			stack = append(stack, node)
			continue
		}

		checklist, reason := parseChecklistLine(line, lineNo)
		switch {
		case checklist != nil:
			appendNode(checklist)
		case reason != "":
			doc.Warnings = append(doc.Warnings, ParseWarning{
				Document: relativePath,
				LineNo:   lineNo,
				Text:     line,
				Reason:   reason,
			})
			appendNode(&PlainNode{Text: line, LineNo: lineNo})
		case strings.TrimSpace(line) != "":
			appendNode(&PlainNode{Text: line, LineNo: lineNo})
		}
	}

	return doc, nil
}
