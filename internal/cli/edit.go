package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/shellquote"
	"github.com/mikesturm/kinetic/internal/surface"
)

var editCmd = &cobra.Command{
	Use:   "edit <document>",
	Short: "Open a surface in your editor",
	Long: `Resolves a document reference against the workspace and opens it in
the configured editor ('editor' in ~/.config/kinetic/config.toml, or
$EDITOR). Bare names are tried under Surfaces/ and Cards/.

Examples:
  kin edit Launch
  kin edit Cards/Deep-Work.md
  kin edit S3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := getWorkspacePath()

		rel, err := resolveDocumentRef(root, args[0])
		if err != nil {
			return handleError(ErrFileWriteError, err, "Run 'kin list' to see known documents")
		}
		abs := filepath.Join(root, filepath.FromSlash(rel))

		if isJSONOutput() {
			editor := getConfig().GetEditor()
			outputSuccess(map[string]interface{}{
				"file":   rel,
				"opened": launchEditor(abs),
				"editor": editor,
			}, nil)
			return nil
		}

		if launchEditor(abs) {
			fmt.Printf("Opening %s\n", rel)
		} else {
			fmt.Printf("File: %s\n", abs)
			fmt.Println("(Set 'editor' in ~/.config/kinetic/config.toml or $EDITOR to open automatically)")
		}
		return nil
	},
}

// resolveDocumentRef maps a user-supplied reference to a workspace-relative
// document path. Exact paths win; bare names are searched in the usual
// directories.
func resolveDocumentRef(root, ref string) (string, error) {
	ref = filepath.ToSlash(strings.TrimSpace(ref))

	candidates := []string{ref}
	if !strings.HasSuffix(ref, ".md") {
		candidates = append(candidates, ref+".md")
	}
	if !strings.Contains(ref, "/") {
		name := ref
		if !strings.HasSuffix(name, ".md") {
			name += ".md"
		}
		candidates = append(candidates,
			surface.SurfacesDir+"/"+name,
			surface.CardsDir+"/"+name,
			surface.ViewsDir+"/"+name,
		)
	}

	for _, c := range candidates {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(c))); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("no document matches %q", ref)
}

// launchEditor starts the configured editor in the background. Returns false
// when no editor is configured or it fails to start.
func launchEditor(path string) bool {
	cfg := getConfig()
	if cfg == nil {
		return false
	}
	editor := cfg.GetEditor()
	if editor == "" {
		return false
	}

	var cmd *exec.Cmd
	// Compound commands like "open -a Cursor" go through the shell.
	if strings.Contains(editor, " ") {
		cmd = exec.Command("sh", "-c", editor+" "+shellquote.Quote(path))
	} else {
		cmd = exec.Command(editor, path)
	}

	if err := cmd.Start(); err != nil {
		fmt.Printf("Warning: failed to open editor '%s': %v\n", editor, err)
		return false
	}
	return true
}

func init() {
	rootCmd.AddCommand(editCmd)
}
