package engine

import (
	"sort"

	"github.com/mikesturm/kinetic/internal/commit"
	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/surface"
	"github.com/mikesturm/kinetic/internal/views"
)

// RegenerateViews rebuilds the generated documents from the ledger without
// walking the sources.
func (e *Engine) RegenerateViews() error {
	r := &run{
		result:         &Result{},
		pending:        make(map[string]*model.Object),
		archiveAppends: make(map[string][]string),
	}
	plan, err := e.buildPlan(r)
	if err != nil {
		return err
	}
	coord := &commit.Coordinator{Log: e.Log}
	return coord.Commit(plan)
}

// buildPlan assembles the document write plan in dependency order: archive
// appends land before the rewrites that remove the migrated lines, and the
// regenerated views come last. Writes whose bytes match what is already on
// disk are dropped so an unchanged workspace commits nothing.
func (e *Engine) buildPlan(r *run) ([]commit.Write, error) {
	var plan []commit.Write

	archives := make([]string, 0, len(r.archiveAppends))
	for rel := range r.archiveAppends {
		archives = append(archives, rel)
	}
	sort.Strings(archives)
	for _, rel := range archives {
		abs := e.Layout.Abs(rel)
		existing, stamp, err := commit.ReadFile(abs)
		if err != nil {
			return nil, err
		}
		data := append([]byte{}, existing...)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		for _, line := range r.archiveAppends[rel] {
			data = append(data, line...)
			data = append(data, '\n')
		}
		plan = append(plan, commit.Write{Path: rel, Abs: abs, Data: data, Stamp: stamp, AppendOnly: true})
	}

	for _, w := range r.docWrites {
		plan = append(plan, commit.Write{Path: w.rel, Abs: e.Layout.Abs(w.rel), Data: w.data, Stamp: w.stamp})
	}

	objects, err := e.Store.All()
	if err != nil {
		return nil, err
	}
	regens := []struct {
		rel     string
		content string
	}{
		{surface.ScheduleFile, views.Schedule(objects, surface.ScheduleFile)},
		{e.Layout.ViewPath("Projects.md"), views.Projects(objects)},
		{e.Layout.ViewPath("Goals.md"), views.Goals(objects)},
		{e.Layout.ViewPath("AoRs.md"), views.Areas(objects)},
		{e.Layout.ViewPath("Today.md"), views.Today(objects, e.now())},
	}
	for _, v := range regens {
		abs := e.Layout.Abs(v.rel)
		current, stamp, err := commit.ReadFile(abs)
		if err != nil {
			return nil, err
		}
		if string(current) == v.content {
			continue
		}
		if v.rel == surface.ScheduleFile && r.scheduleStamp != nil {
			stamp = *r.scheduleStamp
		}
		plan = append(plan, commit.Write{Path: v.rel, Abs: abs, Data: []byte(v.content), Stamp: stamp})
	}
	return plan, nil
}
