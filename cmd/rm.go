package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marcus/rolo/internal/controller"
	"github.com/marcus/rolo/internal/mutation"
	"github.com/marcus/rolo/internal/output"
)

var rmFlags viewFlags

// rmResult is the JSON shape of a fully successful `rolo rm`.
type rmResult struct {
	Deleted []string `json:"deleted"`
}

var rmCmd = &cobra.Command{
	Use:     "rm [id...]",
	Aliases: []string{"delete", "del"},
	Short:   "Delete contacts",
	Long: `Delete one or more contacts by id, or with --all every contact visible
under --search and --favorites. Deletes run concurrently; when some fail the
rest still go through and each failure is reported.`,
	Example: `  rolo rm 3f2a 9c1d
  rolo rm --all --search "old corp" --yes`,
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		yes, _ := cmd.Flags().GetBool("yes")
		if all == (len(args) > 0) {
			return invalidInput("pass contact ids or --all, not both or neither")
		}

		ctrl, err := openController(cmd.Context())
		if err != nil {
			return err
		}

		if all {
			rmFlags.apply(ctrl)
			ctrl.SelectAllVisible()
		} else {
			var unknown []string
			for _, id := range uniqueStrings(args) {
				if _, ok := ctrl.Contact(id); !ok {
					unknown = append(unknown, id)
					continue
				}
				ctrl.Select(id)
			}
			if len(unknown) > 0 {
				return fmt.Errorf("%w: %s", mutation.ErrContactNotFound, strings.Join(unknown, ", "))
			}
		}

		sel := ctrl.SelectionState()
		if sel.Count == 0 {
			if !jsonOutput {
				output.Info("No contacts match")
				return nil
			}
			return output.JSON(rmResult{Deleted: []string{}})
		}

		if all && !yes {
			ok, err := confirmDelete(ctrl, sel.Count)
			if err != nil {
				return err
			}
			if !ok {
				output.Info("Cancelled")
				return nil
			}
		}

		deleted, err := ctrl.DeleteSelected(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(rmResult{Deleted: deleted})
		}
		output.Success("Deleted %d contact(s)", len(deleted))
		return nil
	},
}

// confirmDelete asks before a bulk delete. Without a terminal there is no
// one to ask, so --yes is required.
func confirmDelete(ctrl *controller.Controller, n int) (bool, error) {
	if !stdinIsTerminal() {
		return false, invalidInput("refusing to delete %d contacts without --yes", n)
	}
	fmt.Println(output.ContactTable(ctrl.Projection(), 30))
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete %d contacts?", n)).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func uniqueStrings(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func init() {
	rootCmd.AddCommand(rmCmd)
	rmFlags.register(rmCmd)
	rmCmd.Flags().Bool("all", false, "Delete every contact visible under --search/--favorites")
	rmCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt for --all")
}
