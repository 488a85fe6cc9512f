// Package mutation applies contact changes against the record store and keeps
// the in-memory collection consistent with the outcome. Favorite toggles are
// applied optimistically and rolled back on failure; every other mutation only
// touches local state after the store has acknowledged it.
package mutation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/marcus/rolo/internal/models"
	"golang.org/x/sync/errgroup"
)

// Store is the subset of the record store client the coordinator needs.
type Store interface {
	CreateContact(ctx context.Context, draft models.ContactDraft) (models.Contact, error)
	UpdateContact(ctx context.Context, id string, full models.Contact) (models.Contact, error)
	PatchContact(ctx context.Context, id string, patch models.ContactPatch) (models.Contact, error)
	DeleteContact(ctx context.Context, id string) error
	AppendActivity(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error)
}

// Target is the in-memory state the coordinator reconciles. Implementations
// must be safe for concurrent use.
type Target interface {
	Contacts() []models.Contact
	Contact(id string) (models.Contact, bool)
	// PutContact inserts c or replaces the contact with the same id.
	PutContact(c models.Contact)
	// RemoveContacts drops the contacts and prunes them from the selection.
	RemoveContacts(ids []string)
	// RecordActivity adds a committed activity entry to the feed.
	RecordActivity(entry models.ActivityLogEntry)
}

// Kind identifies the mutation type.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
	KindToggle Kind = "favorite"
)

// State is the lifecycle position of a pending mutation.
type State int

const (
	StateInitiated State = iota
	StateOptimisticallyApplied
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateOptimisticallyApplied:
		return "optimistic"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled-back"
	default:
		return "initiated"
	}
}

// PendingMutation records an in-flight change to one contact.
type PendingMutation struct {
	Kind     Kind
	TargetID string
	Previous models.Contact
	Next     models.Contact
	State    State
}

// Coordinator serializes mutations per contact id. At most one mutation per
// id is in flight; a second one is rejected with ErrMutationInFlight.
type Coordinator struct {
	store  Store
	target Target
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	inflight map[string]*PendingMutation
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithClock sets the clock used to stamp activity entries.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a coordinator writing to store and reconciling into target.
func New(store Store, target Target, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		target:   target,
		logger:   slog.Default(),
		now:      time.Now,
		inflight: make(map[string]*PendingMutation),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InFlight returns a copy of the pending mutation on id, if any.
func (c *Coordinator) InFlight(id string) (PendingMutation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.inflight[id]
	if !ok {
		return PendingMutation{}, false
	}
	return *p, true
}

func (c *Coordinator) begin(kind Kind, id string) (*PendingMutation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[id]; busy {
		return nil, ErrMutationInFlight
	}
	p := &PendingMutation{Kind: kind, TargetID: id, State: StateInitiated}
	c.inflight[id] = p
	return p, nil
}

func (c *Coordinator) track(p *PendingMutation, prev, next models.Contact, s State) {
	c.mu.Lock()
	p.Previous, p.Next, p.State = prev, next, s
	c.mu.Unlock()
}

func (c *Coordinator) finish(p *PendingMutation, s State) {
	c.mu.Lock()
	p.State = s
	delete(c.inflight, p.TargetID)
	c.mu.Unlock()
}

// Create validates draft and creates the contact. Nothing is inserted locally
// until the store has assigned an id.
func (c *Coordinator) Create(ctx context.Context, draft models.ContactDraft) (models.Contact, error) {
	draft = draft.Trimmed()
	if err := Validate(draft, c.target.Contacts(), ""); err != nil {
		return models.Contact{}, err
	}

	created, err := c.store.CreateContact(context.WithoutCancel(ctx), draft)
	if err != nil {
		return models.Contact{}, err
	}
	c.target.PutContact(created)
	c.appendActivity(ctx, models.ActionCreate, created.Name)
	return created, nil
}

// Update validates draft and replaces the editable fields of contact id. The
// favorite flag and creation time are carried over from the current value.
func (c *Coordinator) Update(ctx context.Context, id string, draft models.ContactDraft) (models.Contact, error) {
	p, err := c.begin(KindUpdate, id)
	if err != nil {
		return models.Contact{}, err
	}

	current, ok := c.target.Contact(id)
	if !ok {
		c.finish(p, StateRolledBack)
		return models.Contact{}, ErrContactNotFound
	}
	draft = draft.Trimmed()
	if err := Validate(draft, c.target.Contacts(), id); err != nil {
		c.finish(p, StateRolledBack)
		return models.Contact{}, err
	}

	full := models.Contact{
		ID:        id,
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Company:   draft.Company,
		Favorite:  current.Favorite,
		CreatedAt: current.CreatedAt,
	}
	c.track(p, current, full, StateInitiated)

	updated, err := c.store.UpdateContact(context.WithoutCancel(ctx), id, full)
	if err != nil {
		c.finish(p, StateRolledBack)
		return models.Contact{}, err
	}
	if updated.ID == "" {
		updated = full
	}
	c.target.PutContact(updated)
	c.finish(p, StateCommitted)
	c.appendActivity(ctx, models.ActionUpdate, updated.Name)
	return updated, nil
}

// Delete removes a single contact.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	_, err := c.DeleteMany(ctx, []string{id})
	var pbf *PartialBulkFailure
	if errors.As(err, &pbf) {
		return pbf.Failed[id]
	}
	return err
}

// DeleteMany deletes every id concurrently and waits for all outcomes. It is
// not a transaction: each id succeeds or fails on its own. Successful ids are
// removed from the collection and the selection, and each one gets its own
// DELETE activity entry. When any id fails the returned error is a
// *PartialBulkFailure listing the failures separately from the successes.
func (c *Coordinator) DeleteMany(ctx context.Context, ids []string) ([]string, error) {
	ids = dedupe(ids)
	failed := make(map[string]error)

	type job struct {
		pending *PendingMutation
		snap    models.Contact
	}
	var jobs []job
	for _, id := range ids {
		p, err := c.begin(KindDelete, id)
		if err != nil {
			failed[id] = err
			continue
		}
		snap, ok := c.target.Contact(id)
		if !ok {
			c.finish(p, StateRolledBack)
			failed[id] = ErrContactNotFound
			continue
		}
		c.track(p, snap, models.Contact{}, StateInitiated)
		jobs = append(jobs, job{pending: p, snap: snap})
	}

	results := make([]error, len(jobs))
	storeCtx := context.WithoutCancel(ctx)
	var g errgroup.Group
	for i, j := range jobs {
		g.Go(func() error {
			results[i] = c.store.DeleteContact(storeCtx, j.snap.ID)
			return nil
		})
	}
	_ = g.Wait()

	var succeeded []string
	for i, j := range jobs {
		if results[i] != nil {
			failed[j.snap.ID] = results[i]
			c.finish(j.pending, StateRolledBack)
			continue
		}
		succeeded = append(succeeded, j.snap.ID)
	}
	if len(succeeded) > 0 {
		c.target.RemoveContacts(succeeded)
	}
	for i, j := range jobs {
		if results[i] == nil {
			c.finish(j.pending, StateCommitted)
			c.appendActivity(ctx, models.ActionDelete, j.snap.Name)
		}
	}

	if len(failed) > 0 {
		return succeeded, &PartialBulkFailure{Succeeded: succeeded, Failed: failed}
	}
	return succeeded, nil
}

// ToggleFavorite flips the favorite flag of contact id. The new value is
// visible locally before the store answers; if the store call fails the flag
// is restored and no activity entry is written.
func (c *Coordinator) ToggleFavorite(ctx context.Context, id string) (models.Contact, error) {
	p, err := c.begin(KindToggle, id)
	if err != nil {
		return models.Contact{}, err
	}

	current, ok := c.target.Contact(id)
	if !ok {
		c.finish(p, StateRolledBack)
		return models.Contact{}, ErrContactNotFound
	}

	newFavorite := !current.Favorite
	optimistic := current
	optimistic.Favorite = newFavorite
	c.target.PutContact(optimistic)
	c.track(p, current, optimistic, StateOptimisticallyApplied)

	confirmed, err := c.store.PatchContact(context.WithoutCancel(ctx), id, models.ContactPatch{Favorite: &newFavorite})
	if err != nil {
		if live, ok := c.target.Contact(id); ok {
			live.Favorite = current.Favorite
			c.target.PutContact(live)
		}
		c.finish(p, StateRolledBack)
		return current, err
	}

	if confirmed.ID == "" {
		confirmed = optimistic
	}
	if _, ok := c.target.Contact(id); ok {
		c.target.PutContact(confirmed)
	}
	c.finish(p, StateCommitted)

	action := models.ActionUnfavorite
	if newFavorite {
		action = models.ActionFavorite
	}
	c.appendActivity(ctx, action, current.Name)
	return confirmed, nil
}

// appendActivity writes an audit entry after its mutation has committed.
// Failures are logged and otherwise ignored.
func (c *Coordinator) appendActivity(ctx context.Context, action models.ActionType, name string) {
	entry := models.ActivityLogEntry{Action: action, ContactName: name, Timestamp: c.now().UTC()}
	saved, err := c.store.AppendActivity(context.WithoutCancel(ctx), entry)
	if err != nil {
		c.logger.Warn("activity append failed", "action", action, "contact", name, "err", err)
		return
	}
	if saved.Action == "" {
		saved = entry
	}
	c.target.RecordActivity(saved)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
