package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the optional YAML block at the top of a surface. Daily cards
// carry their card date here; source documents usually have none.
type Frontmatter struct {
	Date  string   `yaml:"date"`
	Focus string   `yaml:"focus"`
	Tags  []string `yaml:"tags"`

	// EndLine is the 1-indexed line of the closing delimiter.
	EndLine int `yaml:"-"`
}

// ParseFrontmatter parses YAML frontmatter from document content. Returns
// nil when no frontmatter is present. Frontmatter is only recognized when
// the very first line is the opening delimiter.
func ParseFrontmatter(content string) (*Frontmatter, error) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, nil
	}

	endLine := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			endLine = i
			break
		}
	}
	if endLine == -1 {
		return nil, nil // unclosed, treat as body content
	}

	var fm Frontmatter
	raw := strings.Join(lines[1:endLine], "\n")
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	fm.EndLine = endLine + 1
	return &fm, nil
}
