package audit

import (
	"sort"
	"strings"

	"github.com/mikesturm/kinetic/internal/model"
)

// DefaultDriftThreshold is the similarity below which a colloquial name is
// considered to have drifted from its canonical name.
const DefaultDriftThreshold = 0.75

// DefaultNamingPattern is the canonical-name shape new objects are expected
// to follow. Segments are informational; conformance checks only that a name
// carries at least as many words as the pattern has segments.
const DefaultNamingPattern = "{Verb-Noun-Descriptor}"

// DriftFlag reports a colloquial name whose similarity to the canonical name
// fell below the threshold. Drift is a review prompt, not an error: the
// colloquial column is expected to evolve.
type DriftFlag struct {
	ID         model.ID
	Canonical  string
	Colloquial string
	Similarity float64
}

// PatternFlag reports a canonical name shorter than the configured naming
// pattern calls for.
type PatternFlag struct {
	ID   model.ID
	Name string
}

// Summary aggregates ledger counts for the audit report.
type Summary struct {
	Total      int
	ByState    map[model.State]int
	ByType     map[model.ObjectType]int
	Drifted    int
	Corrupt    int
	OffPattern int // names shorter than the naming pattern
}

// Report is the outcome of one audit pass.
type Report struct {
	Drift       []DriftFlag
	Corruptions []*model.CorruptionError
	Patterns    []PatternFlag
	Summary     Summary
}

// Clean reports whether the audit found nothing worth a human's attention.
func (r *Report) Clean() bool {
	return len(r.Drift) == 0 && len(r.Corruptions) == 0 && len(r.Patterns) == 0
}

// Auditor runs drift and integrity checks over ledger objects.
type Auditor struct {
	// Threshold is the cosine-similarity floor; names scoring below it are
	// flagged as drifted. Zero means DefaultDriftThreshold.
	Threshold float64

	// NamingPattern is the expected canonical-name shape, for example
	// "{Verb-Noun-Descriptor}". Empty means DefaultNamingPattern; "-"
	// segments set the minimum word count.
	NamingPattern string
}

func (a *Auditor) threshold() float64 {
	if a.Threshold > 0 {
		return a.Threshold
	}
	return DefaultDriftThreshold
}

func (a *Auditor) minWords() int {
	pattern := a.NamingPattern
	if pattern == "" {
		pattern = DefaultNamingPattern
	}
	pattern = strings.Trim(pattern, "{}")
	if pattern == "" {
		return 0
	}
	return len(strings.Split(pattern, "-"))
}

// Audit inspects every object and builds the report. Deleted objects are
// skipped for drift and pattern checks but still verified for corruption:
// a tampered row is a problem regardless of state.
func (a *Auditor) Audit(objects []*model.Object) *Report {
	rep := &Report{
		Summary: Summary{
			ByState: make(map[model.State]int),
			ByType:  make(map[model.ObjectType]int),
		},
	}
	threshold := a.threshold()
	minWords := a.minWords()

	for _, obj := range objects {
		rep.Summary.Total++
		rep.Summary.ByState[obj.State]++
		rep.Summary.ByType[obj.Type]++

		if err := VerifyObject(obj); err != nil {
			rep.Corruptions = append(rep.Corruptions, err)
			continue
		}
		if obj.State == model.StateDeleted {
			continue
		}

		if obj.ColloquialName != "" && obj.ColloquialName != obj.CanonicalName {
			sim := Similarity(obj.CanonicalName, obj.ColloquialName)
			if sim < threshold {
				rep.Drift = append(rep.Drift, DriftFlag{
					ID:         obj.ID,
					Canonical:  obj.CanonicalName,
					Colloquial: obj.ColloquialName,
					Similarity: sim,
				})
			}
		}

		if minWords > 0 && len(tokenize(obj.CanonicalName)) < minWords {
			rep.Patterns = append(rep.Patterns, PatternFlag{ID: obj.ID, Name: obj.CanonicalName})
		}
	}

	rep.Summary.Drifted = len(rep.Drift)
	rep.Summary.Corrupt = len(rep.Corruptions)
	rep.Summary.OffPattern = len(rep.Patterns)

	sort.Slice(rep.Drift, func(i, j int) bool { return rep.Drift[i].ID.Less(rep.Drift[j].ID) })
	sort.Slice(rep.Patterns, func(i, j int) bool { return rep.Patterns[i].ID.Less(rep.Patterns[j].ID) })
	return rep
}
