package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/rolo/internal/controller"
	"github.com/marcus/rolo/internal/models"
	"github.com/marcus/rolo/internal/output"
)

// listResult is the JSON shape of `rolo list`.
type listResult struct {
	View     models.ViewConfig `json:"view"`
	Total    int               `json:"total"`
	Visible  int               `json:"visible"`
	Contacts []models.Contact  `json:"contacts"`
}

var listFlags viewFlags

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List contacts",
	Long: `List contacts after search, favorites filter and sort are applied.

The search is a case-insensitive substring match on name, email and company.
Sorting by name or company uses locale-aware collation (see "rolo config").`,
	Example: `  rolo list
  rolo list --search acme --sort company
  rolo list -f --json`,
	GroupID: "core",
	Args:    inputArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController(cmd.Context())
		if err != nil {
			return err
		}
		listFlags.apply(ctrl)
		return renderList(ctrl)
	},
}

func renderList(ctrl *controller.Controller) error {
	visible := ctrl.Projection()
	total := ctrl.Stats().Total

	if jsonOutput {
		return output.JSON(listResult{
			View:     ctrl.View(),
			Total:    total,
			Visible:  len(visible),
			Contacts: visible,
		})
	}

	fmt.Println(output.ContactTable(visible, 40))
	if len(visible) != total {
		fmt.Printf("\nShowing %d of %d contacts\n", len(visible), total)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listFlags.register(listCmd)
}
