package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/rolo/internal/config"
	"github.com/marcus/rolo/internal/output"
	"github.com/marcus/rolo/internal/storeclient"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage rolo configuration",
	GroupID: "system",
	Long: `Manage client settings stored in $ROLO_HOME/config.json (default
~/.config/rolo/config.json).

Keys:
  server_url       store URL (env ROLO_SERVER_URL and --server override it)
  timeout          per-request timeout, e.g. 10s
  activity_window  number of activity entries fetched (default 20)
  collation        BCP 47 language used to sort names (default th)`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value (empty value clears it)",
	Args:  inputArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return &configError{err: err}
		}
		if err := config.Set(dir, args[0], args[1]); err != nil {
			return invalidInput("%v", err)
		}
		if jsonOutput {
			return output.JSON(map[string]string{"key": args[0], "value": args[1]})
		}
		output.Success("Set %s = %s", args[0], args[1])
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a stored config value",
	Args:  inputArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return &configError{err: err}
		}
		v, err := config.Get(dir, args[0])
		if err != nil {
			return invalidInput("%v", err)
		}
		if jsonOutput {
			return output.JSON(map[string]string{"key": args[0], "value": v})
		}
		fmt.Println(v)
		return nil
	},
}

// configListResult is the JSON shape of `rolo config list`.
type configListResult struct {
	Entries        []config.Entry `json:"entries"`
	StoreReachable bool           `json:"store_reachable"`
	StoreError     string         `json:"store_error,omitempty"`
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List settings with their effective values and check the store",
	Args:  inputArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return &configError{err: err}
		}
		entries, err := config.List(dir)
		if err != nil {
			return &configError{err: err}
		}
		s, err := loadSettings()
		if err != nil {
			return err
		}
		for i := range entries {
			if entries[i].Key == "server_url" {
				entries[i].Effective = s.ServerURL
			}
		}

		res := configListResult{Entries: entries}
		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		defer cancel()
		if _, err := storeclient.New(s.ServerURL, s.Timeout).HealthCheck(ctx); err != nil {
			res.StoreError = err.Error()
		} else {
			res.StoreReachable = true
		}

		if jsonOutput {
			return output.JSON(res)
		}
		for _, e := range entries {
			v := e.Value
			if v == "" {
				v = "(unset)"
			}
			fmt.Printf("%-16s %-28s effective: %s\n", e.Key, v, e.Effective)
		}
		fmt.Println()
		if res.StoreReachable {
			output.Success("store reachable at %s", s.ServerURL)
		} else {
			output.Warning("store unreachable: %s", res.StoreError)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd, configListCmd)
}
