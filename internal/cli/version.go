package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		version := buildinfo.Version
		commit := buildinfo.Commit

		// Fall back to module build info for 'go install' builds.
		if version == "" {
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
				version = info.Main.Version
			}
		}
		if version == "" {
			version = "dev"
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{
				"version": version,
				"commit":  commit,
				"date":    buildinfo.Date,
			}, nil)
			return nil
		}

		fmt.Printf("kin %s", version)
		if commit != "" {
			fmt.Printf(" (%s)", commit)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
