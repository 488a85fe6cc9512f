package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marcus/rolo/internal/models"
	"github.com/marcus/rolo/internal/mutation"
	"github.com/marcus/rolo/internal/output"
	"github.com/marcus/rolo/pkg/monitor"
)

var editCmd = &cobra.Command{
	Use:     "edit <id>",
	Aliases: []string{"update"},
	Short:   "Edit a contact",
	Long: `Edit a contact. Only the fields given as flags change; the rest keep
their current values. The favorite flag is not touched (see "rolo fav").`,
	Example: `  rolo edit 3f2a --company Globex
  rolo edit 3f2a -i`,
	GroupID: "core",
	Args:    inputArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController(cmd.Context())
		if err != nil {
			return err
		}

		id := args[0]
		cur, ok := ctrl.Contact(id)
		if !ok {
			return mutation.ErrContactNotFound
		}

		draft := mergeDraft(cur, draftFromFlags(cmd), func(name string) bool {
			return cmd.Flags().Changed(name)
		})

		interactive, _ := cmd.Flags().GetBool("interactive")
		if interactive {
			form := monitor.NewFormState(monitor.FormModeEdit, &cur)
			if err := form.Form.Run(); err != nil {
				return err
			}
			draft = form.Draft()
		} else if draft == cur.Draft() {
			return invalidInput("nothing to change: pass at least one of --name, --email, --phone, --company or -i")
		}

		c, err := ctrl.Update(cmd.Context(), id, draft)
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(c)
		}
		output.Success("Updated %s", output.ContactOneLiner(c))
		return nil
	},
}

// mergeDraft overlays the changed fields of flags onto cur.
func mergeDraft(cur models.Contact, flags models.ContactDraft, changed func(string) bool) models.ContactDraft {
	d := cur.Draft()
	if changed("name") {
		d.Name = flags.Name
	}
	if changed("email") {
		d.Email = flags.Email
	}
	if changed("phone") {
		d.Phone = flags.Phone
	}
	if changed("company") {
		d.Company = flags.Company
	}
	return d
}

func init() {
	rootCmd.AddCommand(editCmd)
	registerContactFlags(editCmd)
}
