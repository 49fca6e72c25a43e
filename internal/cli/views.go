package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/ui"
)

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "Regenerate the view documents from the ledger",
	Long: `Rebuilds Views/ and the schedule surface from the ledger without
walking the sources. Useful after delete or resurrect, which change
the ledger without touching any markdown.

Examples:
  kin views`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer eng.Store.Close()

		if err := eng.RegenerateViews(); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]bool{"regenerated": true}, nil)
			return nil
		}
		fmt.Println(ui.Success("Views regenerated"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewsCmd)
}
