package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/ledger"
	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/ui"
)

var showRendered bool

// ObjectDetail is the JSON payload for 'kin show'.
type ObjectDetail struct {
	ObjectSummary
	CanonicalName string   `json:"canonical_name"`
	Checksum      string   `json:"checksum"`
	Notes         string   `json:"notes,omitempty"`
	People        []string `json:"people,omitempty"`
	BackRefs      []string `json:"backrefs,omitempty"`
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one object in detail",
	Long: `Shows an object's fields, notes, and movement history.

Examples:
  kin show T12
  kin show P3.1 --rendered`,
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

		obj, err := eng.Store.Get(id)
		if errors.Is(err, ledger.ErrNotFound) {
			return handleErrorMsg(ErrObjectNotFound,
				fmt.Sprintf("no object %s in the ledger", id),
				"Run 'kin list --all' to see every issued id")
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		refs, err := eng.Store.BackRefs(id)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			detail := ObjectDetail{
				ObjectSummary: summaryOf(obj),
				CanonicalName: obj.CanonicalName,
				Checksum:      obj.CanonicalChecksum,
				Notes:         obj.Notes,
				People:        obj.People,
			}
			for _, ref := range refs {
				detail.BackRefs = append(detail.BackRefs, ref.Document)
			}
			outputSuccess(detail, nil)
			return nil
		}

		printObject(obj, refs)
		return nil
	},
}

func printObject(obj *model.Object, refs []model.BackRef) {
	fmt.Printf("%s %s\n", ui.AccentBold.Render(obj.ID.String()), ui.Bold.Render(obj.ColloquialName))
	if obj.ColloquialName != obj.CanonicalName {
		fmt.Printf("%s %s\n", ui.Muted.Render("canonical: "), obj.CanonicalName)
	}
	fmt.Printf("%s %s\n", ui.Muted.Render("type:      "), string(obj.Type))
	fmt.Printf("%s %s\n", ui.Muted.Render("state:     "), stateLabel(obj.State))
	if !obj.ParentID.IsZero() {
		fmt.Printf("%s %s\n", ui.Muted.Render("parent:    "), ui.Accent.Render(obj.ParentID.String()))
	}
	if len(obj.Tags) > 0 {
		fmt.Printf("%s %s\n", ui.Muted.Render("tags:      "), strings.Join(obj.Tags, ", "))
	}
	if len(obj.People) > 0 {
		fmt.Printf("%s %s\n", ui.Muted.Render("people:    "), strings.Join(obj.People, ", "))
	}
	if obj.Origin.Document != "" {
		fmt.Printf("%s %s\n", ui.Muted.Render("document:  "), ui.FilePath(obj.Origin.Document))
	}
	for _, ref := range refs {
		fmt.Printf("%s %s\n", ui.Muted.Render("moved from:"), ref.Document)
	}

	if obj.Notes == "" {
		return
	}
	fmt.Println()
	if showRendered {
		dc := ui.NewDisplayContext()
		if rendered, err := ui.RenderMarkdown(obj.Notes, dc.TermWidth); err == nil {
			fmt.Print(rendered)
			return
		}
	}
	fmt.Println(obj.Notes)
}

func init() {
	showCmd.Flags().BoolVar(&showRendered, "rendered", false, "Render notes as styled markdown")
	rootCmd.AddCommand(showCmd)
}
