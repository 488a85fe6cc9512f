package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marcus/rolo/internal/controller"
	"github.com/marcus/rolo/internal/models"
)

// viewFlags are the projection flags shared by list and rm.
type viewFlags struct {
	search    string
	sort      sortValue
	favorites bool
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&v.search, "search", "s", "", "Keep contacts whose name, email or company contains this text")
	cmd.Flags().VarP(&v.sort, "sort", "o", "Sort order: "+sortKeyList())
	cmd.Flags().BoolVarP(&v.favorites, "favorites", "f", false, "Only show favorites")
	cmd.RegisterFlagCompletionFunc("sort", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		keys := make([]string, len(models.SortKeys))
		for i, k := range models.SortKeys {
			keys[i] = string(k)
		}
		return keys, cobra.ShellCompDirectiveNoFileComp
	})
}

func (v *viewFlags) config() models.ViewConfig {
	return models.ViewConfig{Keyword: v.search, SortKey: v.sort.Key(), FavoritesOnly: v.favorites}
}

func (v *viewFlags) apply(ctrl *controller.Controller) {
	ctrl.SetView(v.config())
}
