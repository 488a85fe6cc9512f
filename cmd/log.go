package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/marcus/rolo/internal/activity"
	"github.com/marcus/rolo/internal/controller"
	"github.com/marcus/rolo/internal/output"
)

var logCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"activity"},
	Short:   "Show the recent activity log",
	Long: `Show the most recent activity entries, newest first. The window defaults
to the activity_window setting (20).`,
	Example: `  rolo log
  rolo log --limit 50
  rolo log --contact "Alice Ng"`,
	GroupID: "view",
	Args:    inputArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 0 {
			return invalidInput("--limit must not be negative")
		}
		if limit > 0 {
			s.ActivityWindow = limit
		}

		ctrl := newController(s)
		if err := ctrl.Refresh(cmd.Context()); err != nil {
			var rerr *controller.RefreshError
			if !errors.As(err, &rerr) || rerr.Activity != nil {
				return err
			}
			slog.Debug("contacts fetch failed", "err", rerr.Contacts)
		}

		entries := ctrl.ActivityFeed()
		if name, _ := cmd.Flags().GetString("contact"); name != "" {
			entries = activity.RecentFor(entries, name, len(entries))
		}

		if jsonOutput {
			return output.JSON(entries)
		}
		fmt.Println(output.ActivityList(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().IntP("limit", "l", 0, "Number of entries (default: activity_window setting)")
	logCmd.Flags().String("contact", "", "Only entries recorded under this exact contact name")
}
