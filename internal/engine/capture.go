package engine

import (
	"fmt"
	"strings"

	"github.com/mikesturm/kinetic/internal/commit"
	"github.com/mikesturm/kinetic/internal/ledger"
	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/parser"
	"github.com/mikesturm/kinetic/internal/surface"
)

// CaptureResult reports one inbox drain.
type CaptureResult struct {
	Captured int
	IDs      []model.ID
}

// Capture appends one line to the inbox. It is the cheap half of capture:
// no parsing, no ledger, just text on the inbox surface for a later drain.
func (e *Engine) Capture(text string) error {
	abs := e.Layout.Abs(e.inboxPath())
	existing, stamp, err := commit.ReadFile(abs)
	if err != nil {
		return err
	}
	data := append([]byte{}, existing...)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	data = append(data, "- [ ] "...)
	data = append(data, strings.TrimSpace(text)...)
	data = append(data, '\n')

	coord := &commit.Coordinator{Log: e.Log}
	return coord.Commit([]commit.Write{{
		Path:  e.inboxPath(),
		Abs:   abs,
		Data:  data,
		Stamp: stamp,
	}})
}

// Drain empties the inbox into the ledger. Every non-blank line becomes an
// object: a `p:`/`g:`/`a:` prefix selects the type, anything else is a task.
// The raw lines are appended to the inbox archive before the inbox itself is
// truncated, so the original text is never the only copy at risk.
func (e *Engine) Drain() (*CaptureResult, error) {
	inboxRel := e.inboxPath()
	abs := e.Layout.Abs(inboxRel)
	content, stamp, err := commit.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	res := &CaptureResult{}
	var muts []ledger.Mutation
	var archived []string

	for _, raw := range strings.Split(string(content), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		text, checked := stripListMarker(line)
		if text == "" {
			continue
		}

		tokens := parser.ExtractTokens(text)
		name := parser.StripTokens(text)
		typ, name := captureType(name)
		if name == "" {
			continue
		}

		family := typ.Family()
		seq, err := e.Store.NextSequence(family)
		if err != nil {
			return nil, err
		}
		id := model.ID{Family: family, Parts: []int{seq}}

		obj := model.NewObject(id, typ, name)
		obj.Origin = model.Location{Document: surface.InboxArchive}
		obj.Tags = tokens.Tags
		obj.People = tokens.Mentions
		if checked && typ == model.TypeTask {
			obj.State = model.StateCompleted
		}

		muts = append(muts, ledger.Mutation{
			Object: obj,
			History: []ledger.HistoryEntry{
				{Field: "canonical_name", Old: "", New: name},
			},
		})
		archived = append(archived, strings.TrimRight(raw, " \t")+" {"+id.String()+"}")
		res.Captured++
		res.IDs = append(res.IDs, id)
	}

	if res.Captured == 0 {
		return res, nil
	}

	if err := e.Store.Apply(muts); err != nil {
		return nil, err
	}
	if e.Log != nil {
		for _, id := range res.IDs {
			_ = e.Log.LogCapture(id.String(), inboxRel)
		}
	}

	archiveRel := surface.InboxArchive
	archiveAbs := e.Layout.Abs(archiveRel)
	existing, archiveStamp, err := commit.ReadFile(archiveAbs)
	if err != nil {
		return nil, err
	}
	data := append([]byte{}, existing...)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	for _, line := range archived {
		data = append(data, line...)
		data = append(data, '\n')
	}

	// Archive append lands before the truncation that depends on it.
	coord := &commit.Coordinator{Log: e.Log}
	err = coord.Commit([]commit.Write{
		{Path: archiveRel, Abs: archiveAbs, Data: data, Stamp: archiveStamp, AppendOnly: true},
		{Path: inboxRel, Abs: abs, Data: []byte{}, Stamp: stamp},
	})
	if err != nil {
		return res, fmt.Errorf("drain inbox: %w", err)
	}
	return res, nil
}

func (e *Engine) inboxPath() string {
	if e.Config != nil {
		return e.Config.InboxPath()
	}
	return surface.InboxFile
}

// stripListMarker removes a leading bullet or checkbox marker and reports
// whether the checkbox was checked.
func stripListMarker(line string) (string, bool) {
	for _, marker := range []string{"- [x] ", "- [X] "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	for _, marker := range []string{"- [ ] ", "- ", "* "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), false
		}
	}
	return line, false
}

// captureType reads an optional type prefix off a captured line.
func captureType(name string) (model.ObjectType, string) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "p:"):
		return model.TypeProject, strings.TrimSpace(name[2:])
	case strings.HasPrefix(lower, "g:"):
		return model.TypeGoal, strings.TrimSpace(name[2:])
	case strings.HasPrefix(lower, "a:"):
		return model.TypeArea, strings.TrimSpace(name[2:])
	}
	return model.TypeTask, name
}
