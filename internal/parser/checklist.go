package parser

import (
	"regexp"
	"strings"
)

var checklistPattern = regexp.MustCompile(`^(\s*)-\s\[([ xX])\]\s?(.*)$`)

// suspicious matches lines that look like checklist attempts but fail the
// strict syntax: unbalanced brackets, a missing state marker, or a bad
// marker character.
var suspiciousChecklist = regexp.MustCompile(`^\s*-\s*\[`)

// parseChecklistLine classifies a single line. It returns a ChecklistNode
// when the line is well-formed, or nil plus a warning reason when the line
// resembles a checklist but is malformed. (nil, "") means not a checklist.
func parseChecklistLine(line string, lineNo int) (*ChecklistNode, string) {
	if m := checklistPattern.FindStringSubmatch(line); m != nil {
		text := strings.TrimSpace(m[3])
		return &ChecklistNode{
			Checked: m[2] == "x" || m[2] == "X",
			Text:    text,
			Indent:  len(m[1]),
			Tokens:  ExtractTokens(text),
			LineNo:  lineNo,
		}, ""
	}

	if suspiciousChecklist.MatchString(line) {
		switch {
		case !strings.Contains(line, "]"):
			return nil, "unbalanced brackets in checklist marker"
		case regexp.MustCompile(`^\s*-\s*\[\]`).MatchString(line):
			return nil, "missing state marker in checklist"
		default:
			return nil, "malformed checklist syntax"
		}
	}

	return nil, ""
}
