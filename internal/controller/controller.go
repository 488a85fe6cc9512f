// Package controller owns the contact view state: the fetched collection, the
// view configuration, the selection and the activity feed. Rendering layers
// read it through copy-returning accessors and change it through intents.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/marcus/rolo/internal/activity"
	"github.com/marcus/rolo/internal/models"
	"github.com/marcus/rolo/internal/mutation"
	"github.com/marcus/rolo/internal/projection"
	"github.com/marcus/rolo/internal/selection"
	"golang.org/x/sync/errgroup"
)

// Store is the record store contract the controller consumes.
type Store interface {
	mutation.Store
	ListContacts(ctx context.Context) ([]models.Contact, error)
	ListRecentActivity(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
}

// SelectionState is a snapshot of the selection.
type SelectionState struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
	// AllVisibleSelected is true when the projection is non-empty and every
	// visible contact is selected.
	AllVisibleSelected bool `json:"all_visible_selected"`
}

// ContactDetail is a contact together with its most recent activity.
type ContactDetail struct {
	Contact models.Contact            `json:"contact"`
	Recent  []models.ActivityLogEntry `json:"recent"`
}

// Controller is safe for concurrent use. Store I/O never happens while the
// state lock is held.
type Controller struct {
	store    Store
	pipeline *projection.Pipeline
	coord    *mutation.Coordinator
	logger   *slog.Logger
	window   int

	mu        sync.Mutex
	contacts  []models.Contact
	view      models.ViewConfig
	projected []models.Contact
	sel       *selection.Manager
	feed      *activity.Feed
	loaded    bool

	// issued is the last generation handed to a fetch. contactsGen and
	// activityGen are the generations whose results are currently applied;
	// a result at or below them is stale and dropped.
	issued      uint64
	contactsGen uint64
	activityGen uint64
}

type settings struct {
	logger    *slog.Logger
	collation string
	window    int
	now       func() time.Time
}

// Option configures a Controller.
type Option func(*settings)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithCollation sets the locale used for name and company ordering.
func WithCollation(locale string) Option {
	return func(s *settings) { s.collation = locale }
}

// WithActivityWindow sets the size of the global activity feed.
func WithActivityWindow(n int) Option {
	return func(s *settings) { s.window = n }
}

// WithClock sets the clock used to stamp activity entries.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// New returns a controller with an empty collection. Call Refresh to load it.
func New(store Store, opts ...Option) *Controller {
	s := settings{
		logger:    slog.Default(),
		collation: projection.DefaultCollation,
		window:    activity.DefaultWindow,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}

	c := &Controller{
		store:    store,
		pipeline: projection.New(s.collation),
		logger:   s.logger,
		view:     models.ViewConfig{SortKey: models.SortDefault},
		sel:      selection.New(),
		feed:     activity.NewFeed(s.window),
	}
	c.window = c.feed.Window()
	c.coord = mutation.New(store, c, mutation.WithLogger(s.logger), mutation.WithClock(s.now))
	c.projected = []models.Contact{}
	return c
}

// --- Fetch ---

// Refresh fetches the contact collection and the recent activity window
// concurrently. Each result is applied independently, so a failed activity
// fetch still lets fresh contacts through. A result from a fetch that was
// issued before a more recently applied one is discarded.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	gen := c.issued
	c.mu.Unlock()

	var (
		contacts   []models.Contact
		entries    []models.ActivityLogEntry
		contactErr error
		entryErr   error
	)
	var g errgroup.Group
	g.Go(func() error {
		contacts, contactErr = c.store.ListContacts(ctx)
		return nil
	})
	g.Go(func() error {
		entries, entryErr = c.store.ListRecentActivity(ctx, c.window)
		return nil
	})
	_ = g.Wait()

	if contactErr == nil {
		c.applyContacts(gen, contacts)
	}
	if entryErr == nil {
		c.applyActivity(gen, entries)
	}

	if contactErr == nil && entryErr == nil {
		return nil
	}
	rerr := &RefreshError{}
	if contactErr != nil {
		rerr.Contacts = fmt.Errorf("fetch contacts: %w", contactErr)
	}
	if entryErr != nil {
		rerr.Activity = fmt.Errorf("fetch activity: %w", entryErr)
	}
	return rerr
}

// RefreshError reports which of the two fetches in Refresh failed. A nil
// field means that fetch succeeded and its result was applied.
type RefreshError struct {
	Contacts error
	Activity error
}

func (e *RefreshError) Error() string {
	return errors.Join(e.Contacts, e.Activity).Error()
}

func (e *RefreshError) Unwrap() []error {
	var errs []error
	if e.Contacts != nil {
		errs = append(errs, e.Contacts)
	}
	if e.Activity != nil {
		errs = append(errs, e.Activity)
	}
	return errs
}

func (c *Controller) applyContacts(gen uint64, contacts []models.Contact) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.contactsGen {
		c.logger.Debug("stale contacts fetch dropped", "gen", gen, "applied", c.contactsGen)
		return false
	}
	c.contactsGen = gen
	c.loaded = true
	c.contacts = slices.Clone(contacts)

	current := make(map[string]struct{}, len(c.contacts))
	for _, ct := range c.contacts {
		current[ct.ID] = struct{}{}
	}
	c.sel.Reconcile(current)
	c.reproject()
	return true
}

func (c *Controller) applyActivity(gen uint64, entries []models.ActivityLogEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.activityGen {
		c.logger.Debug("stale activity fetch dropped", "gen", gen, "applied", c.activityGen)
		return false
	}
	c.activityGen = gen
	c.feed.Replace(entries)
	return true
}

// reproject recomputes the projection. Callers hold c.mu.
func (c *Controller) reproject() {
	c.projected = c.pipeline.Project(c.contacts, c.view)
}

// Loaded reports whether a contacts fetch has been applied.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// --- Readers ---

// Projection returns the visible contacts in display order.
func (c *Controller) Projection() []models.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.projected)
}

// View returns the current view configuration.
func (c *Controller) View() models.ViewConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// SelectionState returns a snapshot of the selection.
func (c *Controller) SelectionState() SelectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SelectionState{
		IDs:                c.sel.IDs(),
		Count:              c.sel.Count(),
		AllVisibleSelected: c.sel.IsAllVisibleSelected(projection.VisibleIDs(c.projected)),
	}
}

// IsSelected reports whether id is selected.
func (c *Controller) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Has(id)
}

// Stats summarizes the full collection, ignoring the view filters.
func (c *Controller) Stats() models.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComputeStats(c.contacts)
}

// ComputeStats counts contacts, distinct non-empty companies and favorites.
// Companies is sorted by count descending, then by name.
func ComputeStats(contacts []models.Contact) models.Stats {
	st := models.Stats{Total: len(contacts)}
	counts := make(map[string]int)
	for _, ct := range contacts {
		if ct.Favorite {
			st.FavoriteCount++
		}
		if ct.Company != "" {
			counts[ct.Company]++
		}
	}
	st.UniqueCompanies = len(counts)
	for name, n := range counts {
		st.Companies = append(st.Companies, models.CompanyCount{Company: name, Count: n})
	}
	sort.Slice(st.Companies, func(i, j int) bool {
		a, b := st.Companies[i], st.Companies[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Company < b.Company
	})
	return st
}

// ActivityFeed returns the recent activity window, newest first.
func (c *Controller) ActivityFeed() []models.ActivityLogEntry {
	return c.feed.Entries()
}

// Detail returns contact id and its most recent activity entries.
func (c *Controller) Detail(id string) (ContactDetail, error) {
	ct, ok := c.Contact(id)
	if !ok {
		return ContactDetail{}, mutation.ErrContactNotFound
	}
	return ContactDetail{
		Contact: ct,
		Recent:  activity.RecentFor(c.feed.Entries(), ct.Name, activity.DefaultRecentLimit),
	}, nil
}

// --- View intents ---

// SetKeyword sets the search keyword.
func (c *Controller) SetKeyword(k string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Keyword = k
	c.reproject()
}

// SetSortKey sets the sort key.
func (c *Controller) SetSortKey(k models.SortKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SortKey = k
	c.reproject()
}

// CycleSortKey advances to the next sort key and returns it.
func (c *Controller) CycleSortKey() models.SortKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SortKey = c.view.SortKey.Next()
	c.reproject()
	return c.view.SortKey
}

// SetFavoritesOnly sets the favorites filter.
func (c *Controller) SetFavoritesOnly(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.FavoritesOnly = on
	c.reproject()
}

// ToggleFavoritesOnly flips the favorites filter and returns the new value.
func (c *Controller) ToggleFavoritesOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.FavoritesOnly = !c.view.FavoritesOnly
	c.reproject()
	return c.view.FavoritesOnly
}

// SetView replaces the whole view configuration.
func (c *Controller) SetView(v models.ViewConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
	c.reproject()
}

// --- Selection intents ---

// Select adds id to the selection. Unknown ids are ignored.
func (c *Controller) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(id) >= 0 {
		c.sel.Select(id)
	}
}

// Deselect removes id from the selection.
func (c *Controller) Deselect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Deselect(id)
}

// ToggleSelect flips the membership of id and returns the new membership.
func (c *Controller) ToggleSelect(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(id) < 0 {
		return false
	}
	next := !c.sel.Has(id)
	c.sel.Toggle(id, next)
	return next
}

// SelectAllVisible selects every contact in the projection. Hidden contacts
// are not touched.
func (c *Controller) SelectAllVisible() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.SelectAll(projection.VisibleIDs(c.projected))
}

// ClearVisible deselects every contact in the projection. Hidden selections
// are kept.
func (c *Controller) ClearVisible() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.ClearAll(projection.VisibleIDs(c.projected))
}

// ToggleAllVisible clears the visible selection when every visible contact
// is selected, and selects all visible contacts otherwise.
func (c *Controller) ToggleAllVisible() {
	c.mu.Lock()
	defer c.mu.Unlock()
	visible := projection.VisibleIDs(c.projected)
	if c.sel.IsAllVisibleSelected(visible) {
		c.sel.ClearAll(visible)
	} else {
		c.sel.SelectAll(visible)
	}
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Clear()
}

// --- Mutations ---

// Create validates and creates a contact.
func (c *Controller) Create(ctx context.Context, draft models.ContactDraft) (models.Contact, error) {
	return c.coord.Create(ctx, draft)
}

// Update validates and replaces the editable fields of contact id.
func (c *Controller) Update(ctx context.Context, id string, draft models.ContactDraft) (models.Contact, error) {
	return c.coord.Update(ctx, id, draft)
}

// Delete removes contact id.
func (c *Controller) Delete(ctx context.Context, id string) error {
	return c.coord.Delete(ctx, id)
}

// DeleteMany removes the given contacts. See mutation.Coordinator.DeleteMany.
func (c *Controller) DeleteMany(ctx context.Context, ids []string) ([]string, error) {
	return c.coord.DeleteMany(ctx, ids)
}

// DeleteSelected removes every selected contact. Failed ids stay selected.
func (c *Controller) DeleteSelected(ctx context.Context) ([]string, error) {
	ids := c.SelectionState().IDs
	if len(ids) == 0 {
		return nil, nil
	}
	return c.coord.DeleteMany(ctx, ids)
}

// ToggleFavorite flips the favorite flag of contact id.
func (c *Controller) ToggleFavorite(ctx context.Context, id string) (models.Contact, error) {
	return c.coord.ToggleFavorite(ctx, id)
}

// Pending reports whether contact id has a mutation in flight.
func (c *Controller) Pending(id string) bool {
	_, ok := c.coord.InFlight(id)
	return ok
}

// --- mutation.Target ---

// Contacts returns the collection in store order.
func (c *Controller) Contacts() []models.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.contacts)
}

// Contact looks up a contact by id in the full collection.
func (c *Controller) Contact(id string) (models.Contact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.contacts[i], true
	}
	return models.Contact{}, false
}

// PutContact inserts or replaces ct. Fetches issued before this write are
// treated as stale.
func (c *Controller) PutContact(ct models.Contact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := slices.Clone(c.contacts)
	if i := c.indexOf(ct.ID); i >= 0 {
		next[i] = ct
	} else {
		next = append(next, ct)
	}
	c.contacts = next
	c.contactsGen = c.issued
	c.reproject()
}

// RemoveContacts drops ids from the collection and the selection.
func (c *Controller) RemoveContacts(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
		c.sel.Deselect(id)
	}
	next := make([]models.Contact, 0, len(c.contacts))
	for _, ct := range c.contacts {
		if _, ok := gone[ct.ID]; !ok {
			next = append(next, ct)
		}
	}
	c.contacts = next
	c.contactsGen = c.issued
	c.reproject()
}

// RecordActivity puts a committed entry at the head of the feed.
func (c *Controller) RecordActivity(e models.ActivityLogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feed.Prepend(e)
	c.activityGen = c.issued
}

func (c *Controller) indexOf(id string) int {
	return slices.IndexFunc(c.contacts, func(ct models.Contact) bool { return ct.ID == id })
}
