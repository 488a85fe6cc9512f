// Package activity correlates audit entries with contacts and holds the
// global recent-activity window.
//
// Entries carry a name snapshot rather than a contact id, so correlation is by
// exact name. Renaming a contact orphans its older entries.
package activity

import (
	"slices"
	"sync"

	"github.com/marcus/rolo/internal/models"
)

const (
	// DefaultRecentLimit is the number of entries RecentFor returns when the
	// caller passes a non-positive limit.
	DefaultRecentLimit = 5

	// DefaultWindow is the size of the global activity feed.
	DefaultWindow = 20
)

// RecentFor returns the entries whose ContactName equals name, newest first,
// capped at limit. Entries with equal timestamps keep their input order.
func RecentFor(entries []models.ActivityLogEntry, name string, limit int) []models.ActivityLogEntry {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var matched []models.ActivityLogEntry
	for _, e := range entries {
		if e.ContactName == name {
			matched = append(matched, e)
		}
	}
	sortNewestFirst(matched)

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func sortNewestFirst(entries []models.ActivityLogEntry) {
	slices.SortStableFunc(entries, func(a, b models.ActivityLogEntry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

// Feed is a bounded, newest-first window over the activity log. It is safe
// for concurrent use.
type Feed struct {
	mu      sync.Mutex
	window  int
	entries []models.ActivityLogEntry
}

// NewFeed returns an empty feed. A non-positive window selects DefaultWindow.
func NewFeed(window int) *Feed {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Feed{window: window}
}

// Window returns the maximum number of entries the feed holds.
func (f *Feed) Window() int {
	return f.window
}

// Replace swaps the feed contents for a freshly fetched page.
func (f *Feed) Replace(entries []models.ActivityLogEntry) {
	next := slices.Clone(entries)
	sortNewestFirst(next)
	if len(next) > f.window {
		next = next[:f.window]
	}

	f.mu.Lock()
	f.entries = next
	f.mu.Unlock()
}

// Prepend adds a just-appended entry to the head of the feed, dropping the
// oldest entry when the window is full.
func (f *Feed) Prepend(e models.ActivityLogEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make([]models.ActivityLogEntry, 0, min(len(f.entries)+1, f.window))
	next = append(next, e)
	for _, old := range f.entries {
		if len(next) == f.window {
			break
		}
		next = append(next, old)
	}
	f.entries = next
}

// Entries returns a copy of the feed, newest first.
func (f *Feed) Entries() []models.ActivityLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.entries)
}

// Len returns the number of entries held.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
