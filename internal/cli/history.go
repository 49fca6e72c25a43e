package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/ui"
)

// HistoryRow is one JSON history record.
type HistoryRow struct {
	Seq       int64  `json:"seq"`
	Field     string `json:"field"`
	Old       string `json:"old,omitempty"`
	New       string `json:"new"`
	ChangedAt string `json:"changed_at,omitempty"`
}

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show an object's append-only change history",
	Long: `Prints every recorded field change for an object, oldest first.
History is append-only: completions, renames, moves, and deletions all
stay visible forever.

Examples:
  kin history T12
  kin history T12 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return handleError(ErrIDInvalid, err, "")
		}

		eng, err := openEngine()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer eng.Store.Close()

		records, err := eng.Store.History(id)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			rows := make([]HistoryRow, 0, len(records))
			for _, rec := range records {
				row := HistoryRow{Seq: rec.Seq, Field: rec.Field, Old: rec.Old, New: rec.New}
				if !rec.ChangedAt.IsZero() {
					row.ChangedAt = rec.ChangedAt.UTC().Format(time.RFC3339)
				}
				rows = append(rows, row)
			}
			outputSuccess(map[string]interface{}{"items": rows}, &Meta{Count: len(rows)})
			return nil
		}

		if len(records) == 0 {
			fmt.Println(ui.Hint(fmt.Sprintf("No history recorded for %s", id)))
			return nil
		}
		table := ui.NewTable(4)
		for _, rec := range records {
			when := ""
			if !rec.ChangedAt.IsZero() {
				when = rec.ChangedAt.Local().Format("2006-01-02 15:04")
			}
			table.AddRow(
				ui.Muted.Render(when),
				rec.Field,
				ui.Muted.Render(rec.Old),
				rec.New,
			)
		}
		fmt.Print(table.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
