package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/config"
	"github.com/mikesturm/kinetic/internal/ui"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage configured workspaces",
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured workspaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadGlobalConfig()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		workspaces := cfg.ListWorkspaces()
		if isJSONOutput() {
			outputSuccess(map[string]any{
				"default":    cfg.DefaultWorkspace,
				"workspaces": workspaces,
			}, &Meta{Count: len(workspaces)})
			return nil
		}

		if len(workspaces) == 0 {
			fmt.Println(ui.Hint("No workspaces configured. Add one with 'kin workspace add <name> <path>'"))
			return nil
		}
		names := make([]string, 0, len(workspaces))
		for name := range workspaces {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			marker := " "
			if name == cfg.DefaultWorkspace {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n", marker, ui.Accent.Render(name), ui.Muted.Render(workspaces[name]))
		}
		return nil
	},
}

var workspaceAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Register a workspace in the global config",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]
		abs, err := filepath.Abs(path)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		cfg, err := loadGlobalConfig()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if cfg.Workspaces == nil {
			cfg.Workspaces = make(map[string]string)
		}
		cfg.Workspaces[name] = abs
		if cfg.DefaultWorkspace == "" {
			cfg.DefaultWorkspace = name
		}
		if err := saveGlobalConfig(cfg); err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		fmt.Println(ui.Successf("Registered workspace '%s' at %s", name, abs))
		return nil
	},
}

var workspaceDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the default workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := loadGlobalConfig()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if _, err := cfg.GetWorkspacePath(name); err != nil {
			return handleErrorMsg(ErrWorkspaceNotFound,
				fmt.Sprintf("workspace '%s' not found", name),
				"Run 'kin workspace list' to see configured workspaces")
		}
		cfg.DefaultWorkspace = name
		if err := saveGlobalConfig(cfg); err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		fmt.Println(ui.Successf("Default workspace set to '%s'", name))
		return nil
	},
}

func saveGlobalConfig(cfg *config.Config) error {
	if configPath != "" {
		return config.SaveTo(configPath, cfg)
	}
	return config.Save(cfg)
}

func init() {
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceAddCmd)
	workspaceCmd.AddCommand(workspaceDefaultCmd)
	rootCmd.AddCommand(workspaceCmd)
}
