package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcus/rolo/internal/config"
	"github.com/marcus/rolo/pkg/monitor"
	"github.com/marcus/rolo/pkg/monitor/keymap"
)

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Aliases: []string{"ui"},
	Short:   "Interactive address book TUI",
	Long: `Launch the interactive address book with a contact list, statistics and
a live activity feed.

Key bindings:
  ↑/↓ j/k     Move cursor
  /           Search
  s           Cycle sort order
  f           Toggle favorites only
  space       Select contact
  a           Select / clear all visible
  D           Delete selected (confirmation required)
  d           Delete contact under cursor
  *           Toggle favorite
  n / e       New / edit contact
  enter       Contact details
  r           Refresh
  ?           Toggle help
  q           Quit

Bindings can be overridden in $ROLO_HOME/keymap.json.`,
	GroupID: "view",
	Args:    inputArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}

		interval, _ := cmd.Flags().GetDuration("interval")
		if interval < 500*time.Millisecond {
			interval = 5 * time.Second
		}

		keys := keymap.NewRegistry()
		keys.RegisterBindings(keymap.DefaultBindings())
		if dir, err := config.Dir(); err == nil {
			kcfg, err := keymap.LoadConfig(keymap.ConfigPath(dir))
			if err != nil {
				return &configError{err: err}
			}
			keymap.ApplyConfig(keys, kcfg)
		}

		model := monitor.NewModel(newController(s), keys, interval, versionStr)

		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running monitor: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().Duration("interval", 5*time.Second, "Refresh interval")
}
