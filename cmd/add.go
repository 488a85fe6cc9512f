package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/rolo/internal/models"
	"github.com/marcus/rolo/internal/output"
	"github.com/marcus/rolo/pkg/monitor"
)

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"new", "create"},
	Short:   "Add a contact",
	Long: `Add a contact. Name and email are required; the email must be unique
(case-insensitive) and a non-empty phone must be unique too.

With --interactive (or when neither --name nor --email is given on a
terminal) a form is shown instead.`,
	Example: `  rolo add --name "Alice Ng" --email alice@example.com --company Acme
  rolo add -i`,
	GroupID: "core",
	Args:    inputArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft := draftFromFlags(cmd)

		interactive, _ := cmd.Flags().GetBool("interactive")
		if interactive || (draft.Name == "" && draft.Email == "" && stdinIsTerminal()) {
			form := monitor.NewFormState(monitor.FormModeCreate, nil)
			if err := form.Form.Run(); err != nil {
				return err
			}
			draft = form.Draft()
		}

		ctrl, err := openController(cmd.Context())
		if err != nil {
			return err
		}

		c, err := ctrl.Create(cmd.Context(), draft)
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(c)
		}
		output.Success("Added %s", output.ContactOneLiner(c))
		return nil
	},
}

// draftFromFlags reads the contact field flags shared by add and edit.
func draftFromFlags(cmd *cobra.Command) models.ContactDraft {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	phone, _ := cmd.Flags().GetString("phone")
	company, _ := cmd.Flags().GetString("company")
	return models.ContactDraft{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Phone:   strings.TrimSpace(phone),
		Company: strings.TrimSpace(company),
	}
}

func registerContactFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("name", "n", "", "Full name")
	cmd.Flags().StringP("email", "e", "", "Email address")
	cmd.Flags().StringP("phone", "p", "", "Phone number")
	cmd.Flags().StringP("company", "c", "", "Company")
	cmd.Flags().BoolP("interactive", "i", false, "Fill in the contact with a form")
}

func init() {
	rootCmd.AddCommand(addCmd)
	registerContactFlags(addCmd)
}
