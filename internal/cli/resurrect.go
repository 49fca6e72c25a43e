package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/ledger"
	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/ui"
)

var resurrectCmd = &cobra.Command{
	Use:   "resurrect <id>",
	Short: "Bring a deleted object back to Active",
	Long: `Returns a deleted object to the Active state. Only deleted objects
can be resurrected; everything else is a state error.

Examples:
  kin resurrect T12`,
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

		err = eng.Store.Resurrect(id)
		if errors.Is(err, ledger.ErrNotFound) {
			return handleErrorMsg(ErrObjectNotFound,
				fmt.Sprintf("no object %s in the ledger", id), "")
		}
		var invalid *model.InvalidTransitionError
		if errors.As(err, &invalid) {
			return handleErrorMsg(ErrStateInvalid,
				fmt.Sprintf("%s is %s, not Deleted; only deleted objects can be resurrected", id, invalid.From), "")
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if eng.Log != nil {
			_ = eng.Log.LogResurrect(id.String())
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{"id": id.String(), "state": string(model.StateActive)}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Resurrected %s", id))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resurrectCmd)
}
