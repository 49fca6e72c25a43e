// Package surface knows the workspace's document layout: where long-lived
// surfaces, daily cards, archives, and generated views live on disk.
package surface

import (
	"os"
	"path/filepath"
	"strings"
)

// Well-known workspace directories.
const (
	SurfacesDir = "Surfaces"
	CardsDir    = "Cards"
	ArchiveDir  = "Archive"
	ViewsDir    = "Views"
	DataDir     = ".kinetic"
)

// Capture documents. The inbox drains into its own archive so capture history
// is never interleaved with task archives.
const (
	InboxFile    = "Surfaces/Inbox.md"
	InboxArchive = "Archive/Inbox-Archive.md"
	ScheduleFile = "Surfaces/S3.md"
)

// Layout resolves workspace-relative document paths.
type Layout struct {
	Root string // absolute workspace root
}

// Init creates the workspace skeleton. Existing directories are left alone.
func (l Layout) Init() error {
	for _, dir := range []string{SurfacesDir, CardsDir, ArchiveDir, ViewsDir, DataDir} {
		if err := os.MkdirAll(filepath.Join(l.Root, dir), 0755); err != nil {
			return err
		}
	}
	return nil
}

// Abs turns a workspace-relative path into an absolute one.
func (l Layout) Abs(rel string) string {
	return filepath.Join(l.Root, filepath.FromSlash(rel))
}

// Rel turns an absolute path under the root into workspace-relative slash form.
func (l Layout) Rel(abs string) string {
	rel, err := filepath.Rel(l.Root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// SurfacePath returns the workspace-relative path of a named surface.
func (l Layout) SurfacePath(name string) string {
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return SurfacesDir + "/" + name
}

// ViewPath returns the workspace-relative path of a generated view.
func (l Layout) ViewPath(name string) string {
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return ViewsDir + "/" + name
}

// ArchivePathFor maps a document to its archive companion: the archive entry
// for Surfaces/Launch.md is Archive/Launch.md, and every daily card shares
// Archive/Cards.md.
func ArchivePathFor(document string) string {
	if strings.HasPrefix(document, CardsDir+"/") {
		return ArchiveDir + "/Cards.md"
	}
	base := document
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return ArchiveDir + "/" + base
}

// IsCard reports whether a workspace-relative path is a daily card.
func IsCard(document string) bool {
	return strings.HasPrefix(document, CardsDir+"/")
}

// IsArchive reports whether a workspace-relative path is an archive document.
func IsArchive(document string) bool {
	return strings.HasPrefix(document, ArchiveDir+"/")
}

// IsView reports whether a workspace-relative path is a generated view.
func IsView(document string) bool {
	return strings.HasPrefix(document, ViewsDir+"/")
}
