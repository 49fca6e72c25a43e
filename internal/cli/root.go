// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/config"
	"github.com/mikesturm/kinetic/internal/ui"
)

var (
	// Global flags
	workspaceName     string // named workspace from config
	workspacePathFlag string // explicit path
	configPath        string

	// Resolved values
	resolvedWorkspacePath string
	cfg                   *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kin",
	Short: "Kinetic - a markdown-backed work ledger",
	Long: `Kinetic keeps plain markdown surfaces and a SQLite ledger in sync.
Tasks, projects, goals, and areas get stable ids; surfaces stay editable;
the ledger remembers everything, including what you crossed out.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip workspace resolution for commands that don't need one.
		switch cmd.Name() {
		case "init", "workspace", "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && (cmd.Parent().Name() == "completion" || cmd.Parent().Name() == "workspace") {
			return nil
		}

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

		// Resolve workspace path: explicit path > named workspace > default.
		switch {
		case workspacePathFlag != "":
			resolvedWorkspacePath = workspacePathFlag
		case workspaceName != "":
			resolvedWorkspacePath, err = cfg.GetWorkspacePath(workspaceName)
			if err != nil {
				return fmt.Errorf("workspace '%s' not found\n\nRun 'kin workspace list' to see configured workspaces", workspaceName)
			}
		case cfg.DefaultWorkspace != "":
			resolvedWorkspacePath, err = cfg.GetWorkspacePath(cfg.DefaultWorkspace)
			if err != nil {
				return fmt.Errorf("default workspace '%s' not found in config", cfg.DefaultWorkspace)
			}
		default:
			return fmt.Errorf(`no workspace specified

Either:
  1. Use --workspace <name> (from config)
  2. Use --workspace-path /path/to/workspace
  3. Set default_workspace in ~/.config/kinetic/config.toml
  4. Run 'kin init /path/to/new/workspace' to create one`)
		}

		if _, err := os.Stat(resolvedWorkspacePath); os.IsNotExist(err) {
			return fmt.Errorf("workspace not found: %s\n\nRun 'kin init %s' to create it", resolvedWorkspacePath, resolvedWorkspacePath)
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceName, "workspace", "w", "", "Named workspace from config")
	rootCmd.PersistentFlags().StringVar(&workspacePathFlag, "workspace-path", "", "Explicit path to workspace directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// getWorkspacePath returns the resolved workspace path.
func getWorkspacePath() string {
	return resolvedWorkspacePath
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}

func loadGlobalConfig() (*config.Config, error) {
	var loadedCfg *config.Config
	var err error
	if configPath != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}
	return loadedCfg, nil
}
