package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikesturm/kinetic/internal/model"
	"github.com/mikesturm/kinetic/internal/ui"
)

var (
	listType  string
	listState string
	listTag   string
	listAll   bool
)

// ObjectSummary is one row of 'kin list' JSON output.
type ObjectSummary struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	State    string   `json:"state"`
	Parent   string   `json:"parent,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Document string   `json:"document,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger objects",
	Long: `Lists objects from the ledger. Archived and deleted objects are
hidden unless --all is set.

Examples:
  kin list
  kin list --type Task --state Active
  kin list --tag Big3
  kin list --all --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer eng.Store.Close()

		objs, err := eng.Store.All()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		var filtered []*model.Object
		for _, obj := range objs {
			if !listAll && (obj.State == model.StateArchived || obj.State == model.StateDeleted) {
				continue
			}
			if listType != "" && !strings.EqualFold(string(obj.Type), listType) {
				continue
			}
			if listState != "" && !strings.EqualFold(string(obj.State), listState) {
				continue
			}
			if listTag != "" && !obj.HasTag(listTag) {
				continue
			}
			filtered = append(filtered, obj)
		}
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID.Less(filtered[j].ID) })

		if isJSONOutput() {
			rows := make([]ObjectSummary, 0, len(filtered))
			for _, obj := range filtered {
				rows = append(rows, summaryOf(obj))
			}
			outputSuccess(map[string]interface{}{"items": rows}, &Meta{Count: len(rows)})
			return nil
		}

		if len(filtered) == 0 {
			fmt.Println(ui.Hint("No matching objects"))
			return nil
		}
		table := ui.NewTable(4)
		for _, obj := range filtered {
			table.AddRow(
				ui.Accent.Render(obj.ID.String()),
				string(obj.Type),
				obj.ColloquialName,
				ui.Muted.Render(stateLabel(obj.State)),
			)
		}
		fmt.Print(table.String())
		fmt.Println(ui.Hint(fmt.Sprintf("%d objects", len(filtered))))
		return nil
	},
}

func summaryOf(obj *model.Object) ObjectSummary {
	s := ObjectSummary{
		ID:       obj.ID.String(),
		Type:     string(obj.Type),
		Name:     obj.ColloquialName,
		State:    string(obj.State),
		Tags:     obj.Tags,
		Document: obj.Origin.Document,
	}
	if !obj.ParentID.IsZero() {
		s.Parent = obj.ParentID.String()
	}
	return s
}

func init() {
	listCmd.Flags().StringVar(&listType, "type", "", "Filter by type (Task, Project, Goal, AOR)")
	listCmd.Flags().StringVar(&listState, "state", "", "Filter by state")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by tag")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include archived and deleted objects")
	rootCmd.AddCommand(listCmd)
}
