package parser

import (
	"regexp"
	"strings"
)

var (
	tagPattern     = regexp.MustCompile(`(?:^|\s)#([A-Za-z][\w-]*)`)
	mentionPattern = regexp.MustCompile(`(?:^|\s)(@[A-Za-z][\w-]*)`)

	// Explicit identity annotations. The long form is authoritative in any
	// surface; the brace and paren shorthands appear in generated views and
	// schedule documents.
	objectIDLong  = regexp.MustCompile(`\[Object ID:\s*([AGPT]\d+(?:\.\d+)*)\]`)
	objectIDBrace = regexp.MustCompile(`\{([AGPT]\d+(?:\.\d+)*)\}`)
	objectIDParen = regexp.MustCompile(`\(([AGPT]\d+(?:\.\d+)*)\)`)

	// Back-reference annotations left by moves and view rendering. Never part
	// of an object's name.
	backRefPattern = regexp.MustCompile(`\(↳\s*[^)]*\)`)
)

// ExtractTokens pulls inline tags, mentions, and an embedded object id out of
// a line of text.
func ExtractTokens(text string) Tokens {
	var tok Tokens

	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		tok.Tags = append(tok.Tags, m[1])
	}
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		tok.Mentions = append(tok.Mentions, m[1])
	}
	tok.ObjectID = extractObjectID(text)
	return tok
}

func extractObjectID(text string) string {
	for _, pattern := range []*regexp.Regexp{objectIDLong, objectIDBrace, objectIDParen} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// StripTokens removes tags, mentions, and id annotations from a line,
// collapsing the leftover whitespace. The result is the text a canonical
// name is fixed from.
func StripTokens(text string) string {
	out := objectIDLong.ReplaceAllString(text, "")
	out = objectIDBrace.ReplaceAllString(out, "")
	out = objectIDParen.ReplaceAllString(out, "")
	out = backRefPattern.ReplaceAllString(out, "")
	out = tagPattern.ReplaceAllString(out, "")
	out = mentionPattern.ReplaceAllString(out, "")
	return strings.Join(strings.Fields(out), " ")
}
