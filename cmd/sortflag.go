package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/marcus/rolo/internal/models"
)

// sortValue is a pflag.Value restricted to the known sort keys.
type sortValue models.SortKey

var _ pflag.Value = (*sortValue)(nil)

var sortAliases = map[string]models.SortKey{
	"":     models.SortDefault,
	"name": models.SortNameAsc,
	"az":   models.SortNameAsc,
	"za":   models.SortNameDesc,
}

func (s *sortValue) String() string {
	if *s == "" {
		return string(models.SortDefault)
	}
	return string(*s)
}

func (s *sortValue) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	if k, ok := sortAliases[v]; ok {
		*s = sortValue(k)
		return nil
	}
	for _, k := range models.SortKeys {
		if string(k) == v {
			*s = sortValue(k)
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", sortKeyList())
}

func (s *sortValue) Type() string { return "sort" }

// Key returns the selected sort key.
func (s *sortValue) Key() models.SortKey {
	return models.SortKey(s.String())
}

func sortKeyList() string {
	keys := make([]string, len(models.SortKeys))
	for i, k := range models.SortKeys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ", ")
}
