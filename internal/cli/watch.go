package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/engine"
	"github.com/mikesturm/kinetic/internal/ui"
	"github.com/mikesturm/kinetic/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and sync on every edit",
	Long: `Watches the workspace for surface edits and runs a full sync after
each burst of changes settles.

This runs in the foreground. Generated views and the data directory are
ignored, so regeneration does not retrigger the watcher.

Examples:
  # Watch the default workspace
  kin watch

  # Watch with debug output
  kin watch --debug

  # Run in background (shell-dependent)
  kin watch &`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Bool("debug", false, "Enable debug logging")
	watchCmd.Flags().Duration("debounce", 250*time.Millisecond, "How long edits must settle before syncing")
}

func runWatch(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	debounce, _ := cmd.Flags().GetDuration("debounce")
	root := getWorkspacePath()

	eng, err := openEngine()
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer eng.Store.Close()

	w, err := watcher.New(watcher.Config{
		Root:          root,
		Engine:        eng,
		DebounceDelay: debounce,
		Debug:         debug,
		OnSync: func(res *engine.Result, err error) {
			if err != nil {
				fmt.Println(ui.Errorf("sync failed: %v", err))
				return
			}
			if res.Created+res.Updated > 0 {
				fmt.Println(ui.Successf("Synced %d documents: %d created, %d updated",
					res.Documents, res.Created, res.Updated))
			}
			printSyncFindings(res)
		},
	})
	if err != nil {
		return handleError(ErrSyncFailed, err, "")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nStopping watcher...")
		cancel()
	}()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", root)

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return handleError(ErrSyncFailed, err, "")
	}
	return nil
}
