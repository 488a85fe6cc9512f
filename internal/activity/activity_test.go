package activity

import (
	"fmt"
	"testing"
	"time"

	"github.com/marcus/rolo/internal/models"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func entry(id, name string, minutes int) models.ActivityLogEntry {
	return models.ActivityLogEntry{
		ID:          id,
		Action:      models.ActionUpdate,
		ContactName: name,
		Timestamp:   base.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestRecentForAlice(t *testing.T) {
	var entries []models.ActivityLogEntry
	// 7 Alice entries interleaved with 3 Bob entries, oldest first.
	for i := 0; i < 7; i++ {
		entries = append(entries, entry(fmt.Sprintf("a%d", i), "Alice", i*10))
		if i < 3 {
			entries = append(entries, entry(fmt.Sprintf("b%d", i), "Bob", i*10+5))
		}
	}

	got := RecentFor(entries, "Alice", 5)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	want := []string{"a6", "a5", "a4", "a3", "a2"}
	for i, e := range got {
		if e.ContactName != "Alice" {
			t.Errorf("entry %d belongs to %q", i, e.ContactName)
		}
		if e.ID != want[i] {
			t.Errorf("entry %d = %s, want %s", i, e.ID, want[i])
		}
	}
}

func TestRecentForMatchesExactName(t *testing.T) {
	entries := []models.ActivityLogEntry{
		entry("1", "Alice", 1),
		entry("2", "alice", 2),
		entry("3", "Alice Smith", 3),
		entry("4", "Alice ", 4),
	}
	got := RecentFor(entries, "Alice", 5)
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("got %+v, want only entry 1", got)
	}
}

func TestRecentForDefaultLimitAndTies(t *testing.T) {
	var entries []models.ActivityLogEntry
	for i := 0; i < 8; i++ {
		entries = append(entries, entry(fmt.Sprintf("t%d", i), "Ann", 0))
	}

	got := RecentFor(entries, "Ann", 0)
	if len(got) != DefaultRecentLimit {
		t.Fatalf("len = %d, want %d", len(got), DefaultRecentLimit)
	}
	for i, e := range got {
		if want := fmt.Sprintf("t%d", i); e.ID != want {
			t.Errorf("tie order: entry %d = %s, want %s", i, e.ID, want)
		}
	}
}

func TestRecentForDoesNotMutateInput(t *testing.T) {
	entries := []models.ActivityLogEntry{entry("old", "Zed", 1), entry("new", "Zed", 2)}
	_ = RecentFor(entries, "Zed", 5)
	if entries[0].ID != "old" || entries[1].ID != "new" {
		t.Errorf("input reordered: %+v", entries)
	}
}

func TestRecentForUnknownName(t *testing.T) {
	if got := RecentFor([]models.ActivityLogEntry{entry("1", "Alice", 0)}, "Nobody", 5); len(got) != 0 {
		t.Errorf("got %+v, want empty", got)
	}
}

func TestFeedReplaceCapsAndSorts(t *testing.T) {
	f := NewFeed(3)
	f.Replace([]models.ActivityLogEntry{
		entry("1", "A", 1), entry("4", "A", 4), entry("2", "A", 2), entry("3", "A", 3),
	})
	got := f.Entries()
	want := []string{"4", "3", "2"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("entry %d = %s, want %s", i, got[i].ID, want[i])
		}
	}
}

func TestFeedPrependKeepsWindow(t *testing.T) {
	f := NewFeed(2)
	f.Prepend(entry("1", "A", 1))
	f.Prepend(entry("2", "A", 2))
	f.Prepend(entry("3", "A", 3))

	got := f.Entries()
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "2" {
		t.Errorf("entries = %+v, want [3 2]", got)
	}
}

func TestFeedEntriesIsCopy(t *testing.T) {
	f := NewFeed(0)
	if f.Window() != DefaultWindow {
		t.Errorf("Window = %d, want %d", f.Window(), DefaultWindow)
	}
	f.Prepend(entry("1", "A", 1))
	got := f.Entries()
	got[0].ID = "mutated"
	if f.Entries()[0].ID != "1" {
		t.Error("Entries exposed internal storage")
	}
}
