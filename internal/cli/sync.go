package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/commit"
	"github.com/mikesturm/kinetic/internal/engine"
	"github.com/mikesturm/kinetic/internal/ui"
)

// SyncResult is the JSON payload for a sync run.
type SyncResult struct {
	Documents int `json:"documents"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Conflicts int `json:"conflicts"`
	Orphans   int `json:"orphans"`
	Drifted   int `json:"drifted"`
	Corrupt   int `json:"corrupt"`
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync surfaces into the ledger and regenerate views",
	Long: `Parses every surface, resolves identities, merges edits into the
ledger, audits the result, and rewrites the generated documents.

Examples:
  kin sync
  kin sync --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer eng.Store.Close()

		var spin *ui.Spinner
		if !isJSONOutput() {
			spin = ui.NewSpinner("Syncing")
			spin.Start()
		}

		start := time.Now()
		res, err := eng.Sync()
		if spin != nil {
			spin.Stop()
		}
		if err != nil {
			var conflict *commit.ConflictError
			if errors.As(err, &conflict) {
				return handleErrorMsg(ErrCommitConflict,
					fmt.Sprintf("%s changed during sync; nothing was written", conflict.Document),
					"Re-run 'kin sync' to absorb the new edit")
			}
			return handleError(ErrSyncFailed, err, "")
		}
		elapsed := time.Since(start).Milliseconds()

		if isJSONOutput() {
			outputSuccess(syncResultOf(res), &Meta{QueryTimeMs: elapsed})
			return nil
		}

		fmt.Println(ui.Successf("Synced %d documents: %d created, %d updated",
			res.Documents, res.Created, res.Updated))
		printSyncFindings(res)
		return nil
	},
}

func syncResultOf(res *engine.Result) SyncResult {
	out := SyncResult{
		Documents: res.Documents,
		Created:   res.Created,
		Updated:   res.Updated,
		Conflicts: len(res.Conflicts) + len(res.NoteConflicts),
		Orphans:   len(res.Orphans),
	}
	if res.Report != nil {
		out.Drifted = len(res.Report.Drift)
		out.Corrupt = len(res.Report.Corruptions)
	}
	return out
}

func printSyncFindings(res *engine.Result) {
	for _, w := range res.Warnings {
		fmt.Println(ui.Warningf("%s:%d: %s", w.Document, w.LineNo, w.Reason))
	}
	for _, o := range res.Orphans {
		fmt.Println(ui.Warningf("orphan %s:%d: %s", o.Document, o.LineNo, o.Reason))
	}
	for _, c := range res.Conflicts {
		fmt.Println(ui.Warningf("%s:%d: annotation %s disagrees with structure %s (annotation kept)",
			c.Document, c.LineNo, c.Embedded, c.Structural))
	}
	for _, c := range res.NoteConflicts {
		fmt.Println(ui.Warningf("%s: notes paragraph %d edited on both sides; markdown kept, ledger value in history",
			c.ID, c.Paragraph))
	}
	if res.Report == nil {
		return
	}
	for _, d := range res.Report.Drift {
		fmt.Printf("%s %s drifted: %q vs %q (similarity %.2f)\n",
			ui.SymbolWarning, ui.Accent.Render(d.ID.String()), d.Canonical, d.Colloquial, d.Similarity)
	}
	for _, c := range res.Report.Corruptions {
		fmt.Println(ui.Errorf("ledger corruption on %s: stored %s field does not match content", c.ID, c.Field))
	}
	for _, p := range res.Report.Patterns {
		fmt.Println(ui.Hint(fmt.Sprintf("%s %q does not follow the naming pattern", p.ID, p.Name)))
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
