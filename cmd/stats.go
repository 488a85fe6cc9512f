package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/rolo/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show contact statistics",
	Long: `Show the total number of contacts, distinct companies, favorites and a
per-company breakdown. Statistics always cover the whole collection,
regardless of search or filters.`,
	GroupID: "view",
	Args:    inputArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openController(cmd.Context())
		if err != nil {
			return err
		}

		stats := ctrl.Stats()
		if jsonOutput {
			return output.JSON(stats)
		}
		fmt.Println(output.FormatStats(stats, 30))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
