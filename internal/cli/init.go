package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/surface"
)

const defaultWorkspaceConfig = `# Kinetic workspace configuration
sync:
  # drift_threshold: 0.75
  # naming_pattern: "{Verb-Noun-Descriptor}"
  # integrity_log: true
capture:
  # inbox: Surfaces/Inbox.md
`

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Initialize a new workspace",
	Long: `Creates a new workspace at the specified path.

Creates:
  - Surfaces/, Cards/, Archive/, Views/  (document directories)
  - kinetic.yaml                         (workspace configuration)
  - .kinetic/                            (ledger and integrity log)
  - .gitignore                           (ignores derived files)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		fmt.Printf("Initializing workspace at: %s\n", path)

		layout := surface.Layout{Root: path}
		if err := layout.Init(); err != nil {
			return fmt.Errorf("failed to create workspace directories: %w", err)
		}

		cfgPath := filepath.Join(path, "kinetic.yaml")
		createdConfig := false
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			if err := os.WriteFile(cfgPath, []byte(defaultWorkspaceConfig), 0644); err != nil {
				return fmt.Errorf("failed to write kinetic.yaml: %w", err)
			}
			createdConfig = true
		}

		gitignorePath := filepath.Join(path, ".gitignore")
		gitignoreStatus := ensureGitignore(gitignorePath)

		inboxAbs := layout.Abs(surface.InboxFile)
		if _, err := os.Stat(inboxAbs); os.IsNotExist(err) {
			if err := os.WriteFile(inboxAbs, []byte("# Inbox\n"), 0644); err != nil {
				return fmt.Errorf("failed to write inbox: %w", err)
			}
		}

		if createdConfig {
			fmt.Println("✓ Created kinetic.yaml (workspace configuration)")
		} else {
			fmt.Println("• kinetic.yaml already exists (kept)")
		}
		fmt.Println("✓ Ensured Surfaces/, Cards/, Archive/, Views/, .kinetic/ exist")

		switch gitignoreStatus {
		case "created":
			fmt.Println("✓ Created .gitignore")
		case "updated":
			fmt.Println("✓ Updated .gitignore (added Kinetic entries)")
		default:
			fmt.Println("• .gitignore already has Kinetic entries")
		}

		fmt.Println("\nWorkspace initialized. Capture something with 'kin capture'.")
		return nil
	},
}

// ensureGitignore makes sure derived files are ignored. The ledger is rebuilt
// from the surfaces, and views are rebuilt from the ledger; neither belongs
// in version control.
func ensureGitignore(path string) string {
	entries := []string{".kinetic/", "Views/"}

	existing := ""
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range entries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		if existing != "" {
			return "kept"
		}
	}

	var content string
	status := "updated"
	if existing == "" {
		status = "created"
		content = `# Kinetic (auto-generated)
# These are derived files - your markdown is the source of truth

# Ledger and integrity log
.kinetic/

# Generated views (rebuilt with 'kin views')
Views/
`
	} else {
		addition := "\n# Kinetic\n"
		for _, entry := range missing {
			addition += entry + "\n"
		}
		content = strings.TrimRight(existing, "\n") + "\n" + addition
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "failed"
	}
	return status
}

func init() {
	rootCmd.AddCommand(initCmd)
}
