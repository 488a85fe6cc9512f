// Package selection tracks which contacts the user has selected. Selection is
// keyed by contact ID so it survives re-renders, re-sorts and re-fetches.
package selection

import "sort"

// Manager owns the selection set. The zero value is not usable; call New.
type Manager struct {
	ids map[string]struct{}
}

// New returns an empty selection.
func New() *Manager {
	return &Manager{ids: make(map[string]struct{})}
}

// Select adds id to the selection.
func (m *Manager) Select(id string) {
	m.ids[id] = struct{}{}
}

// Deselect removes id from the selection.
func (m *Manager) Deselect(id string) {
	delete(m.ids, id)
}

// Toggle sets the membership of id to isSelected.
func (m *Manager) Toggle(id string, isSelected bool) {
	if isSelected {
		m.Select(id)
	} else {
		m.Deselect(id)
	}
}

// Has reports whether id is selected.
func (m *Manager) Has(id string) bool {
	_, ok := m.ids[id]
	return ok
}

// SelectAll selects every id in visibleIDs. Only the ids passed in are
// touched; callers pass the current projection, never the full collection.
func (m *Manager) SelectAll(visibleIDs []string) {
	for _, id := range visibleIDs {
		m.ids[id] = struct{}{}
	}
}

// ClearAll deselects every id in visibleIDs, leaving selections outside the
// visible projection alone.
func (m *Manager) ClearAll(visibleIDs []string) {
	for _, id := range visibleIDs {
		delete(m.ids, id)
	}
}

// Clear empties the selection.
func (m *Manager) Clear() {
	clear(m.ids)
}

// IsAllVisibleSelected reports whether visibleIDs is non-empty and every id
// in it is selected.
func (m *Manager) IsAllVisibleSelected(visibleIDs []string) bool {
	if len(visibleIDs) == 0 {
		return false
	}
	for _, id := range visibleIDs {
		if !m.Has(id) {
			return false
		}
	}
	return true
}

// Reconcile drops every selected id that is not in currentIDs. It is called
// after each fetch with the ids of the whole fetched collection, so filtering
// never prunes a selection.
func (m *Manager) Reconcile(currentIDs map[string]struct{}) {
	for id := range m.ids {
		if _, ok := currentIDs[id]; !ok {
			delete(m.ids, id)
		}
	}
}

// Count returns the number of selected ids. The bulk-action affordance is
// shown iff Count() > 0.
func (m *Manager) Count() int {
	return len(m.ids)
}

// IDs returns the selected ids in sorted order.
func (m *Manager) IDs() []string {
	out := make([]string, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
