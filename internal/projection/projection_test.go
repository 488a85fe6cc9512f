package projection

import (
	"reflect"
	"testing"

	"github.com/marcus/rolo/internal/models"
)

func sample() []models.Contact {
	return []models.Contact{
		{ID: "1", Name: "Charlie", Email: "charlie@acme.io", Company: "Acme"},
		{ID: "2", Name: "alice", Email: "alice@globex.io", Company: "Globex", Favorite: true},
		{ID: "3", Name: "Bob", Email: "bob@mail.io"},
		{ID: "4", Name: "Dana", Email: "dana@acme.io", Company: "Acme", Favorite: true},
		{ID: "5", Name: "Eve", Email: "eve@mail.io", Company: "Initech"},
	}
}

func ids(cs []models.Contact) []string {
	return VisibleIDs(cs)
}

func TestProjectDeterministicAndIdempotent(t *testing.T) {
	configs := []models.ViewConfig{
		{SortKey: models.SortDefault},
		{SortKey: models.SortNameAsc},
		{SortKey: models.SortNameDesc},
		{SortKey: models.SortCompany},
		{SortKey: "bogus"},
		{Keyword: "ACME", SortKey: models.SortNameAsc, FavoritesOnly: true},
	}
	for _, cfg := range configs {
		in := sample()
		first := Project(in, cfg)
		second := Project(in, cfg)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("cfg %+v: projections differ: %v vs %v", cfg, ids(first), ids(second))
		}
		again := Project(first, cfg)
		if !reflect.DeepEqual(first, again) {
			t.Errorf("cfg %+v: not idempotent: %v vs %v", cfg, ids(first), ids(again))
		}
		if !reflect.DeepEqual(in, sample()) {
			t.Errorf("cfg %+v: input mutated", cfg)
		}
	}
}

func TestKeywordFilter(t *testing.T) {
	tests := []struct {
		keyword string
		want    []string
	}{
		{"", []string{"1", "2", "3", "4", "5"}},
		{"ALI", []string{"2"}},
		{"acme", []string{"1", "4"}},
		{"mail.io", []string{"3", "5"}},
		{"init", []string{"5"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			got := ids(Project(sample(), models.ViewConfig{Keyword: tt.keyword, SortKey: "none"}))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("keyword %q = %v, want %v", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestCompanyKeywordSkipsContactsWithoutCompany(t *testing.T) {
	records := []models.Contact{
		{ID: "a", Name: "Bob", Email: "bob@mail.io"},
		{ID: "b", Name: "Zed", Email: "zed@mail.io", Company: "Bobcat"},
	}

	got := ids(Project(records, models.ViewConfig{Keyword: "cat", SortKey: models.SortDefault}))
	if !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("company keyword = %v, want [b]", got)
	}

	got = ids(Project(records, models.ViewConfig{Keyword: "bob", SortKey: models.SortDefault}))
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("name keyword = %v, want [a b]", got)
	}
}

func TestFavoritesOnly(t *testing.T) {
	got := ids(Project(sample(), models.ViewConfig{FavoritesOnly: true, SortKey: models.SortDefault}))
	if !reflect.DeepEqual(got, []string{"2", "4"}) {
		t.Errorf("favorites = %v, want [2 4]", got)
	}
}

func TestDefaultSortFavoritesFirstStable(t *testing.T) {
	got := ids(Project(sample(), models.ViewConfig{SortKey: models.SortDefault}))
	want := []string{"2", "4", "1", "3", "5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("default sort = %v, want %v", got, want)
	}
}

func TestNameSort(t *testing.T) {
	asc := ids(Project(sample(), models.ViewConfig{SortKey: models.SortNameAsc}))
	if want := []string{"2", "3", "1", "4", "5"}; !reflect.DeepEqual(asc, want) {
		t.Errorf("name-asc = %v, want %v", asc, want)
	}
	desc := ids(Project(sample(), models.ViewConfig{SortKey: models.SortNameDesc}))
	if want := []string{"5", "4", "1", "3", "2"}; !reflect.DeepEqual(desc, want) {
		t.Errorf("name-desc = %v, want %v", desc, want)
	}
}

func TestCompanySortEmptyFirstAndStable(t *testing.T) {
	got := ids(Project(sample(), models.ViewConfig{SortKey: models.SortCompany}))
	want := []string{"3", "1", "4", "2", "5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("company sort = %v, want %v", got, want)
	}
}

func TestUnknownSortKeepsInputOrder(t *testing.T) {
	got := ids(Project(sample(), models.ViewConfig{SortKey: "bogus"}))
	if want := []string{"1", "2", "3", "4", "5"}; !reflect.DeepEqual(got, want) {
		t.Errorf("unknown sort = %v, want %v", got, want)
	}
}

func TestCollationLocaleFallback(t *testing.T) {
	p := New("not a locale!!")
	got := ids(p.Project([]models.Contact{{ID: "b", Name: "b"}, {ID: "a", Name: "A"}}, models.ViewConfig{SortKey: models.SortNameAsc}))
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("fallback collation = %v", got)
	}
}
