package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marcus/rolo/internal/output"
)

var favCmd = &cobra.Command{
	Use:     "fav <id>",
	Aliases: []string{"star"},
	Short:   "Toggle a contact's favorite flag",
	GroupID: "core",
	Args:    inputArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController(cmd.Context())
		if err != nil {
			return err
		}

		c, err := ctrl.ToggleFavorite(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(c)
		}
		if c.Favorite {
			output.Success("%s %s is now a favorite", output.FavoriteMark(true), c.Name)
		} else {
			output.Success("%s removed from favorites", c.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(favCmd)
}
