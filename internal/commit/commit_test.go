package commit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCommitAppliesInOrder(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "Archive", "Launch.md")
	card := filepath.Join(dir, "Cards", "2026-08-25-TodayCard.md")
	writeFile(t, archive, "- [x] Old entry\n")
	writeFile(t, card, "- [x] Send Report to Morgan {T2}\n")

	archiveStamp, err := StampFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	cardStamp, err := StampFile(card)
	if err != nil {
		t.Fatal(err)
	}

	c := &Coordinator{}
	err = c.Commit([]Write{
		{
			Path:       "Archive/Launch.md",
			Abs:        archive,
			Data:       []byte("- [x] Old entry\n- [x] Send Report to Morgan {T2}\n"),
			Stamp:      archiveStamp,
			AppendOnly: true,
		},
		{
			Path:  "Cards/2026-08-25-TodayCard.md",
			Abs:   card,
			Data:  []byte(""),
			Stamp: cardStamp,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(archive)
	if string(got) != "- [x] Old entry\n- [x] Send Report to Morgan {T2}\n" {
		t.Errorf("archive = %q", got)
	}
	got, _ = os.ReadFile(card)
	if len(got) != 0 {
		t.Errorf("card = %q, want emptied after archive append", got)
	}
}

func TestCommitAbortsOnConcurrentEdit(t *testing.T) {
	dir := t.TempDir()
	card := filepath.Join(dir, "card.md")
	writeFile(t, card, "- [ ] Call Dave\n")

	stamp, err := StampFile(card)
	if err != nil {
		t.Fatal(err)
	}

	// Another writer slips in between read and commit.
	writeFile(t, card, "- [ ] Call Dave\n- [ ] New line\n")

	c := &Coordinator{}
	err = c.Commit([]Write{{Path: "card.md", Abs: card, Data: []byte("x"), Stamp: stamp}})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	got, _ := os.ReadFile(card)
	if string(got) != "- [ ] Call Dave\n- [ ] New line\n" {
		t.Error("aborted commit must leave the file untouched")
	}
}

func TestCommitStampChecksBeforeAnyWrite(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.md")
	second := filepath.Join(dir, "second.md")
	writeFile(t, first, "a")
	writeFile(t, second, "b")

	firstStamp, _ := StampFile(first)

	c := &Coordinator{}
	err := c.Commit([]Write{
		{Path: "first.md", Abs: first, Data: []byte("a2"), Stamp: firstStamp},
		{Path: "second.md", Abs: second, Data: []byte("b2"), Stamp: Stamp{}}, // stale: file exists
	})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	got, _ := os.ReadFile(first)
	if string(got) != "a" {
		t.Error("first write applied despite a conflict later in the plan")
	}
}

func TestCommitRejectsArchiveShrink(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive.md")
	writeFile(t, archive, "- [x] Kept forever\n")

	stamp, _ := StampFile(archive)

	c := &Coordinator{}
	err := c.Commit([]Write{{
		Path:       "archive.md",
		Abs:        archive,
		Data:       []byte("- [x] Rewritten\n"),
		Stamp:      stamp,
		AppendOnly: true,
	}})

	var violation *AppendViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("err = %v, want AppendViolationError", err)
	}
}

func TestCommitCreatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	view := filepath.Join(dir, "Views", "Projects.md")

	c := &Coordinator{}
	err := c.Commit([]Write{{
		Path:  "Views/Projects.md",
		Abs:   view,
		Data:  []byte("## Projects\n"),
		Stamp: Stamp{}, // asserts the file does not exist yet
	}})
	if err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(view)
	if err != nil || string(got) != "## Projects\n" {
		t.Errorf("view = %q, %v", got, err)
	}
}

func TestReadFileMissing(t *testing.T) {
	data, stamp, err := ReadFile(filepath.Join(t.TempDir(), "nope.md"))
	if err != nil {
		t.Fatal(err)
	}
	if data != nil || stamp.Exists {
		t.Errorf("missing file should stamp as non-existent: %q %+v", data, stamp)
	}
}
