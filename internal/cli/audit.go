package cli

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/audit"
	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/ui"
)

var auditSummary bool

// AuditResult is the JSON payload for 'kin audit'.
type AuditResult struct {
	Total       int            `json:"total"`
	ByType      map[string]int `json:"by_type"`
	ByState     map[string]int `json:"by_state"`
	Drifted     int            `json:"drifted"`
	Corrupt     int            `json:"corrupt"`
	OffPattern  int            `json:"off_pattern"`
	Buckets     map[string]int `json:"buckets,omitempty"`
	Orphans     int            `json:"orphans"`
	ContentSHA  string         `json:"content_sha,omitempty"`
	DriftDetail []DriftDetail  `json:"drift,omitempty"`
}

// DriftDetail is one drifted name pair.
type DriftDetail struct {
	ID         string  `json:"id"`
	Canonical  string  `json:"canonical"`
	Colloquial string  `json:"colloquial"`
	Similarity float64 `json:"similarity"`
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit the ledger for drift, corruption, and naming",
	Long: `Checks every ledger object: canonical checksums must match their
content, colloquial names must stay recognizably close to canonical
ones, and names should follow the workspace naming pattern.

Examples:
  kin audit
  kin audit --summary
  kin audit --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer eng.Store.Close()

		objs, err := eng.Store.All()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		auditor := &audit.Auditor{
			Threshold:     eng.Config.DriftThreshold(audit.DefaultDriftThreshold),
			NamingPattern: eng.Config.NamingPattern(audit.DefaultNamingPattern),
		}
		report := auditor.Audit(objs)

		byType := make(map[string]int, len(report.Summary.ByType))
		for typ, n := range report.Summary.ByType {
			byType[string(typ)] = n
		}
		byState := make(map[string]int, len(report.Summary.ByState))
		for state, n := range report.Summary.ByState {
			byState[string(state)] = n
		}

		result := AuditResult{
			Total:      report.Summary.Total,
			ByType:     byType,
			ByState:    byState,
			Drifted:    len(report.Drift),
			Corrupt:    len(report.Corruptions),
			OffPattern: len(report.Patterns),
		}
		for _, d := range report.Drift {
			result.DriftDetail = append(result.DriftDetail, DriftDetail{
				ID:         d.ID.String(),
				Canonical:  d.Canonical,
				Colloquial: d.Colloquial,
				Similarity: d.Similarity,
			})
		}
		if auditSummary {
			result.Buckets = bucketDistribution(objs)
			result.ContentSHA = ledgerContentSHA(objs)
			result.Orphans = lastSyncOrphans(eng.Log)
		}

		if isJSONOutput() {
			outputSuccess(result, nil)
			return nil
		}

		if report.Clean() {
			fmt.Println(ui.Successf("Ledger clean: %d objects audited", report.Summary.Total))
		} else {
			for _, c := range report.Corruptions {
				fmt.Println(ui.Errorf("corruption on %s: stored %s does not match content", c.ID, c.Field))
			}
			for _, d := range report.Drift {
				fmt.Printf("%s %s drifted: %q vs %q (similarity %.2f)\n",
					ui.SymbolWarning, ui.Accent.Render(d.ID.String()), d.Canonical, d.Colloquial, d.Similarity)
			}
			for _, p := range report.Patterns {
				fmt.Println(ui.Hint(fmt.Sprintf("%s %q does not follow the naming pattern", p.ID, p.Name)))
			}
		}

		if auditSummary {
			printAuditSummary(result)
		}
		return nil
	},
}

func printAuditSummary(result AuditResult) {
	fmt.Println()
	fmt.Println(ui.Header("Ledger Summary"))
	fmt.Printf("%s %s\n", ui.Muted.Render("objects: "), ui.Accent.Render(fmt.Sprintf("%d", result.Total)))
	fmt.Printf("%s %s\n", ui.Muted.Render("by type: "), countLine(result.ByType))
	fmt.Printf("%s %s\n", ui.Muted.Render("by state:"), countLine(result.ByState))
	if len(result.Buckets) > 0 {
		fmt.Printf("%s %s\n", ui.Muted.Render("schedule:"), countLine(result.Buckets))
	}
	fmt.Printf("%s %d\n", ui.Muted.Render("orphans: "), result.Orphans)
	fmt.Printf("%s %s\n", ui.Muted.Render("content: "), ui.Muted.Render(result.ContentSHA))
}

func countLine(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func bucketDistribution(objs []*model.Object) map[string]int {
	dist := make(map[string]int)
	for _, obj := range objs {
		if obj.Type != model.TypeTask || !obj.State.Open() {
			continue
		}
		bucket := obj.BucketTag()
		if bucket == "" {
			bucket = "after"
		}
		dist[bucket]++
	}
	return dist
}

// ledgerContentSHA hashes the audited fields of every object in id order, so
// two ledgers with the same content report the same digest.
func ledgerContentSHA(objs []*model.Object) string {
	sorted := make([]*model.Object, len(objs))
	copy(sorted, objs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID.Less(sorted[j].ID) })

	h := sha256.New()
	for _, obj := range sorted {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s|%s\n",
			obj.ID, obj.Type, obj.CanonicalName, obj.CanonicalChecksum,
			obj.ColloquialName, obj.State, strings.Join(obj.Tags, ","))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// lastSyncOrphans reads the most recent sync entry from the integrity log.
func lastSyncOrphans(log *audit.Logger) int {
	if log == nil || !log.Enabled() {
		return 0
	}
	entries, err := log.Read()
	if err != nil {
		return 0
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Operation != "sync" {
			continue
		}
		if n, ok := entries[i].Extra["orphans"].(float64); ok {
			return int(n)
		}
		return 0
	}
	return 0
}

func init() {
	auditCmd.Flags().BoolVar(&auditSummary, "summary", false, "Include ledger counts, schedule distribution, and content digest")
	rootCmd.AddCommand(auditCmd)
}
