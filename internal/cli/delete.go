package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/ledger"
	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/ui"
)

var deleteReason string

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Mark an object deleted",
	Long: `Marks an object deleted in the ledger. Nothing is removed: the row,
its history, and the deletion reason all stay queryable, and
'kin resurrect' can bring the object back.

Examples:
  kin delete T12 --reason "duplicate of T9"`,
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

		err = eng.Store.RecordDeletion(id, deleteReason)
		if errors.Is(err, ledger.ErrNotFound) {
			return handleErrorMsg(ErrObjectNotFound,
				fmt.Sprintf("no object %s in the ledger", id), "")
		}
		var invalid *model.InvalidTransitionError
		if errors.As(err, &invalid) {
			return handleErrorMsg(ErrStateInvalid, invalid.Error(), "")
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if eng.Log != nil {
			_ = eng.Log.LogDelete(id.String(), deleteReason)
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{"id": id.String(), "state": string(model.StateDeleted)}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Deleted %s (history preserved)", id))
		return nil
	},
}

func init() {
	deleteCmd.Flags().StringVar(&deleteReason, "reason", "", "Why the object is being deleted")
	rootCmd.AddCommand(deleteCmd)
}
