package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/rolo/internal/output"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"info"},
	Short:   "Show a contact and its recent history",
	Long: `Show a contact with its five most recent activity entries. History is
matched by contact name within the recent activity window, so entries
recorded under an earlier name are not shown.`,
	GroupID: "view",
	Args:    inputArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController(cmd.Context())
		if err != nil {
			return err
		}

		detail, err := ctrl.Detail(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(detail)
		}

		md := output.ContactMarkdown(detail.Contact, detail.Recent)
		rendered, err := output.RenderMarkdown(md)
		if err != nil {
			// Fall back to the raw markdown.
			rendered = md
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
