package surface

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikesturm/kinetic/internal/parser"
)

// WalkResult is one markdown document encountered during a workspace walk.
// Content is the raw bytes the document was parsed from, so callers can stamp
// exactly what they read.
type WalkResult struct {
	Path         string // absolute
	RelativePath string // workspace-relative, slash-separated
	Document     *parser.Document
	Content      []byte
	FileMtime    int64
	Error        error
}

// WalkDocuments walks every markdown file under the root and hands each
// parsed document to the handler. The .kinetic data directory, hidden
// directories, and generated views are skipped: views are outputs, not
// sources of record.
func (l Layout) WalkDocuments(handler func(result WalkResult) error) error {
	return filepath.WalkDir(l.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: l.Rel(path), Error: err})
		}

		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") && path != l.Root {
				return filepath.SkipDir
			}
			if l.Rel(path) == ViewsDir {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ".md") {
			return nil
		}

		rel := l.Rel(path)
		info, err := d.Info()
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: rel, Error: err})
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: rel, Error: err})
		}

		doc, err := parser.Parse(string(content), rel, l.Root)
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: rel, Error: err})
		}

		return handler(WalkResult{
			Path:         path,
			RelativePath: rel,
			Document:     doc,
			Content:      content,
			FileMtime:    info.ModTime().Unix(),
		})
	})
}

// CollectDocuments walks the workspace and returns all parsed documents plus
// the files that failed.
func (l Layout) CollectDocuments() ([]*parser.Document, []WalkResult, error) {
	var docs []*parser.Document
	var failed []WalkResult

	err := l.WalkDocuments(func(result WalkResult) error {
		if result.Error != nil {
			failed = append(failed, result)
		} else {
			docs = append(docs, result.Document)
		}
		return nil
	})
	return docs, failed, err
}
