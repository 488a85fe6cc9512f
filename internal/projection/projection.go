// Package projection derives the displayed contact list from the raw
// collection and the view configuration. Every function here is pure: inputs
// are never modified and each call returns a fresh slice.
package projection

import (
	"slices"
	"strings"

	"github.com/marcus/rolo/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultCollation is the locale used for name and company ordering when none
// is configured.
const DefaultCollation = "th"

// Pipeline filters and sorts contacts using a fixed collation locale.
type Pipeline struct {
	tag language.Tag
}

// New returns a pipeline collating with the given BCP 47 locale. An empty or
// unparseable locale falls back to the root collation.
func New(locale string) *Pipeline {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.Und
	}
	return &Pipeline{tag: tag}
}

var defaultPipeline = New(DefaultCollation)

// Project runs the default pipeline.
func Project(records []models.Contact, cfg models.ViewConfig) []models.Contact {
	return defaultPipeline.Project(records, cfg)
}

// Project filters records by keyword, then by favorite, then sorts them
// according to cfg.SortKey. The sort is stable, so equal elements keep their
// input order and an unknown sort key leaves the filtered order untouched.
func (p *Pipeline) Project(records []models.Contact, cfg models.ViewConfig) []models.Contact {
	out := make([]models.Contact, 0, len(records))
	keyword := strings.ToLower(cfg.Keyword)
	for _, c := range records {
		if !MatchesKeyword(c, keyword) {
			continue
		}
		if cfg.FavoritesOnly && !c.Favorite {
			continue
		}
		out = append(out, c)
	}

	cmp := p.comparator(cfg.SortKey)
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

// MatchesKeyword reports whether the lowercase keyword is empty or a substring
// of the contact's lowercase name, email or company.
func MatchesKeyword(c models.Contact, keyword string) bool {
	if keyword == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), keyword) ||
		strings.Contains(strings.ToLower(c.Email), keyword) {
		return true
	}
	return c.Company != "" && strings.Contains(strings.ToLower(c.Company), keyword)
}

func (p *Pipeline) comparator(key models.SortKey) func(a, b models.Contact) int {
	switch key {
	case models.SortDefault:
		return func(a, b models.Contact) int {
			switch {
			case a.Favorite == b.Favorite:
				return 0
			case a.Favorite:
				return -1
			default:
				return 1
			}
		}
	case models.SortNameAsc:
		col := collate.New(p.tag)
		return func(a, b models.Contact) int { return col.CompareString(a.Name, b.Name) }
	case models.SortNameDesc:
		col := collate.New(p.tag)
		return func(a, b models.Contact) int { return col.CompareString(b.Name, a.Name) }
	case models.SortCompany:
		col := collate.New(p.tag)
		return func(a, b models.Contact) int { return col.CompareString(a.Company, b.Company) }
	}
	return nil
}

// VisibleIDs returns the ids of a projection in display order.
func VisibleIDs(projection []models.Contact) []string {
	ids := make([]string, len(projection))
	for i, c := range projection {
		ids[i] = c.ID
	}
	return ids
}
