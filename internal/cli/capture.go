package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/ui"
)

// CaptureResult is the JSON payload for a capture or drain.
type CaptureResult struct {
	Captured int      `json:"captured"`
	IDs      []string `json:"ids,omitempty"`
}

var captureCmd = &cobra.Command{
	Use:   "capture [text]",
	Short: "Capture a thought, or drain the inbox into the ledger",
	Long: `With text, appends one line to the inbox and returns immediately.
Without text, drains the inbox: every line becomes a ledger object
(prefix 'p:' for a project, 'g:' for a goal, 'a:' for an area; plain
text becomes a task), the originals are appended to the inbox archive,
and the inbox is cleared.

Examples:
  kin capture "call Dave about the margin review"
  kin capture "p: Launch Revamp"
  kin capture`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer eng.Store.Close()

		if len(args) > 0 {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return handleErrorMsg(ErrFileWriteError, "nothing to capture", "")
			}
			if err := eng.Capture(text); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
			if isJSONOutput() {
				outputSuccess(CaptureResult{Captured: 1}, nil)
				return nil
			}
			fmt.Println(ui.Success("Captured to inbox"))
			return nil
		}

		res, err := eng.Drain()
		if err != nil {
			return handleError(ErrSyncFailed, err, "")
		}

		if isJSONOutput() {
			out := CaptureResult{Captured: res.Captured}
			for _, id := range res.IDs {
				out.IDs = append(out.IDs, id.String())
			}
			outputSuccess(out, &Meta{Count: res.Captured})
			return nil
		}

		if res.Captured == 0 {
			fmt.Println(ui.Info("Inbox is empty"))
			return nil
		}
		ids := make([]string, 0, len(res.IDs))
		for _, id := range res.IDs {
			ids = append(ids, id.String())
		}
		fmt.Println(ui.Successf("Drained %d inbox %s: %s",
			res.Captured, pluralItem(res.Captured), strings.Join(ids, ", ")))
		return nil
	},
}

func pluralItem(n int) string {
	if n == 1 {
		return "item"
	}
	return "items"
}

func init() {
	rootCmd.AddCommand(captureCmd)
}
