package controller

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/marcus/rolo/internal/models"
	"github.com/marcus/rolo/internal/mutation"
)

// memStore is an in-memory Store. listHook, when set, replaces ListContacts.
type memStore struct {
	mu       sync.Mutex
	contacts []models.Contact
	log      []models.ActivityLogEntry
	failIDs  map[string]bool
	listHook func(ctx context.Context) ([]models.Contact, error)
	logErr   error
	seq      int
}

func newMemStore(cs ...models.Contact) *memStore {
	return &memStore{contacts: cs, failIDs: make(map[string]bool)}
}

func (s *memStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	if s.listHook != nil {
		return s.listHook(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Contact(nil), s.contacts...), nil
}

func (s *memStore) ListRecentActivity(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logErr != nil {
		return nil, s.logErr
	}
	out := make([]models.ActivityLogEntry, 0, len(s.log))
	for i := len(s.log) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.log[i])
	}
	return out, nil
}

func (s *memStore) CreateContact(ctx context.Context, d models.ContactDraft) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	c := models.Contact{ID: fmt.Sprintf("c%d", 100+s.seq), Name: d.Name, Email: d.Email, Phone: d.Phone, Company: d.Company}
	s.contacts = append(s.contacts, c)
	return c, nil
}

func (s *memStore) UpdateContact(ctx context.Context, id string, full models.Contact) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			s.contacts[i] = full
			return full, nil
		}
	}
	return models.Contact{}, errors.New("not found")
}

func (s *memStore) PatchContact(ctx context.Context, id string, p models.ContactPatch) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIDs[id] {
		return models.Contact{}, errors.New("store down")
	}
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			s.contacts[i] = p.Apply(s.contacts[i])
			return s.contacts[i], nil
		}
	}
	return models.Contact{}, errors.New("not found")
}

func (s *memStore) DeleteContact(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIDs[id] {
		return errors.New("store down")
	}
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (s *memStore) AppendActivity(ctx context.Context, e models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = fmt.Sprintf("l%d", len(s.log)+1)
	s.log = append(s.log, e)
	return e, nil
}

func fixture() []models.Contact {
	return []models.Contact{
		{ID: "c1", Name: "Alice", Email: "alice@acme.io", Company: "Acme"},
		{ID: "c2", Name: "Bob", Email: "bob@globex.io", Company: "Globex", Favorite: true},
		{ID: "c3", Name: "Carol", Email: "carol@acme.io", Company: "Acme"},
		{ID: "c4", Name: "Dan", Email: "dan@solo.io"},
	}
}

func loaded(t *testing.T, store *memStore) *Controller {
	t.Helper()
	c := New(store, WithCollation("en"))
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return c
}

func ids(cs []models.Contact) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestRefreshLoadsProjectionAndStats(t *testing.T) {
	c := loaded(t, newMemStore(fixture()...))

	if !c.Loaded() {
		t.Error("Loaded = false after refresh")
	}
	if got, want := ids(c.Projection()), []string{"c2", "c1", "c3", "c4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("projection = %v, want %v", got, want)
	}

	st := c.Stats()
	if st.Total != 4 || st.UniqueCompanies != 2 || st.FavoriteCount != 1 {
		t.Errorf("stats = %+v", st)
	}
	wantCompanies := []models.CompanyCount{{Company: "Acme", Count: 2}, {Company: "Globex", Count: 1}}
	if !reflect.DeepEqual(st.Companies, wantCompanies) {
		t.Errorf("companies = %+v, want %+v", st.Companies, wantCompanies)
	}
}

func TestStatsIgnoreViewFilters(t *testing.T) {
	c := loaded(t, newMemStore(fixture()...))
	c.SetKeyword("zzz")
	c.SetFavoritesOnly(true)

	if len(c.Projection()) != 0 {
		t.Fatalf("projection should be empty")
	}
	if st := c.Stats(); st.Total != 4 {
		t.Errorf("Total = %d, want 4", st.Total)
	}
}

func TestViewIntents(t *testing.T) {
	c := loaded(t, newMemStore(fixture()...))

	c.SetKeyword("acme")
	if got := ids(c.Projection()); !reflect.DeepEqual(got, []string{"c1", "c3"}) {
		t.Errorf("keyword projection = %v", got)
	}

	c.SetKeyword("")
	if on := c.ToggleFavoritesOnly(); !on {
		t.Fatal("ToggleFavoritesOnly = false")
	}
	if got := ids(c.Projection()); !reflect.DeepEqual(got, []string{"c2"}) {
		t.Errorf("favorites projection = %v", got)
	}

	c.SetFavoritesOnly(false)
	c.SetSortKey(models.SortNameDesc)
	if got := ids(c.Projection()); !reflect.DeepEqual(got, []string{"c4", "c3", "c2", "c1"}) {
		t.Errorf("name-desc projection = %v", got)
	}
	if k := c.CycleSortKey(); k != models.SortCompany {
		t.Errorf("CycleSortKey = %s, want company", k)
	}
}

func TestSelectAllVisibleLeavesHiddenAlone(t *testing.T) {
	c := loaded(t, newMemStore(fixture()...))

	c.Select("c4")
	c.SetKeyword("acme")
	c.SelectAllVisible()

	st := c.SelectionState()
	if !reflect.DeepEqual(st.IDs, []string{"c1", "c3", "c4"}) || st.Count != 3 {
		t.Errorf("selection = %+v", st)
	}
	if !st.AllVisibleSelected {
		t.Error("AllVisibleSelected = false")
	}

	c.ToggleAllVisible()
	if got := c.SelectionState().IDs; !reflect.DeepEqual(got, []string{"c4"}) {
		t.Errorf("after toggle-all = %v, want [c4]", got)
	}

	c.ToggleAllVisible()
	c.ClearVisible()
	if got := c.SelectionState().IDs; !reflect.DeepEqual(got, []string{"c4"}) {
		t.Errorf("after ClearVisible = %v, want [c4]", got)
	}

	c.ClearSelection()
	if c.SelectionState().Count != 0 {
		t.Error("ClearSelection left ids behind")
	}
}

func TestSelectUnknownIDIgnored(t *testing.T) {
	c := loaded(t, newMemStore(fixture()...))
	c.Select("ghost")
	if c.ToggleSelect("ghost") {
		t.Error("ToggleSelect on unknown id returned true")
	}
	if c.SelectionState().Count != 0 {
		t.Error("unknown id selected")
	}
	if !c.ToggleSelect("c1") || !c.IsSelected("c1") {
		t.Error("ToggleSelect(c1) did not select")
	}
	c.Deselect("c1")
	if c.IsSelected("c1") {
		t.Error("Deselect left c1 selected")
	}
}

func TestRefreshReconcilesSelection(t *testing.T) {
	store := newMemStore(fixture()...)
	c := loaded(t, store)
	c.Select("c1")
	c.Select("c3")

	store.mu.Lock()
	store.contacts = store.contacts[1:] // c1 removed elsewhere
	store.mu.Unlock()

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := c.SelectionState().IDs; !reflect.DeepEqual(got, []string{"c3"}) {
		t.Errorf("selection = %v, want [c3]", got)
	}
}

func TestStaleFetchDropped(t *testing.T) {
	store := newMemStore(fixture()...)
	c := New(store)

	release := make(chan struct{})
	entered := make(chan struct{})
	var calls int
	var mu sync.Mutex
	store.listHook = func(ctx context.Context) ([]models.Contact, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(entered)
			<-release
			return fixture()[:1], nil // old snapshot
		}
		return fixture(), nil
	}

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-entered

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Refresh: %v", err)
	}

	if n := len(c.Contacts()); n != 4 {
		t.Errorf("contacts = %d, want 4 (older fetch must not win)", n)
	}
}

func TestFetchIssuedBeforeMutationIsStale(t *testing.T) {
	store := newMemStore(fixture()...)
	c := loaded(t, store)

	release := make(chan struct{})
	entered := make(chan struct{})
	store.listHook = func(ctx context.Context) ([]models.Contact, error) {
		close(entered)
		<-release
		return fixture(), nil // snapshot taken before the delete below
	}

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-entered

	store.listHook = nil
	if err := c.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	close(release)
	<-done

	if _, ok := c.Contact("c1"); ok {
		t.Error("deleted contact resurrected by a fetch issued before the delete")
	}
}

func TestRefreshPartialFailure(t *testing.T) {
	store := newMemStore(fixture()...)
	store.logErr = errors.New("log offline")
	c := New(store)

	err := c.Refresh(context.Background())
	if err == nil || !errors.Is(err, store.logErr) {
		t.Fatalf("err = %v, want wrapped log error", err)
	}
	if len(c.Contacts()) != 4 {
		t.Error("contacts not applied when only the activity fetch failed")
	}
}

func TestRefreshErrorNamesFailedFetch(t *testing.T) {
	store := newMemStore(fixture()...)
	store.logErr = errors.New("log offline")
	c := New(store)

	var rerr *RefreshError
	if err := c.Refresh(context.Background()); !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *RefreshError", err)
	}
	if rerr.Contacts != nil {
		t.Errorf("Contacts = %v, want nil", rerr.Contacts)
	}
	if !errors.Is(rerr.Activity, store.logErr) {
		t.Errorf("Activity = %v", rerr.Activity)
	}

	down := errors.New("contacts offline")
	store.logErr = nil
	store.listHook = func(ctx context.Context) ([]models.Contact, error) { return nil, down }
	err := c.Refresh(context.Background())
	if !errors.As(err, &rerr) || !errors.Is(rerr.Contacts, down) || rerr.Activity != nil {
		t.Fatalf("err = %v, want contacts-only failure", err)
	}
}

// meetingStore makes both list calls wait until the other one has started.
type meetingStore struct {
	*memStore
	mu      sync.Mutex
	arrived int
	both    chan struct{}
}

func (s *meetingStore) meet() error {
	s.mu.Lock()
	s.arrived++
	if s.arrived == 2 {
		close(s.both)
	}
	s.mu.Unlock()

	select {
	case <-s.both:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("fetches did not overlap")
	}
}

func (s *meetingStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	if err := s.meet(); err != nil {
		return nil, err
	}
	return s.memStore.ListContacts(ctx)
}

func (s *meetingStore) ListRecentActivity(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	if err := s.meet(); err != nil {
		return nil, err
	}
	return s.memStore.ListRecentActivity(ctx, limit)
}

func TestRefreshFetchesConcurrently(t *testing.T) {
	store := &meetingStore{memStore: newMemStore(fixture()...), both: make(chan struct{})}
	c := New(store)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(c.Contacts()) != 4 {
		t.Errorf("contacts = %d, want 4", len(c.Contacts()))
	}
}

func TestDeleteSelectedPartialFailure(t *testing.T) {
	store := newMemStore(fixture()...)
	store.failIDs["c2"] = true
	c := loaded(t, store)
	c.Select("c1")
	c.Select("c2")

	succeeded, err := c.DeleteSelected(context.Background())
	var pbf *mutation.PartialBulkFailure
	if !errors.As(err, &pbf) {
		t.Fatalf("err = %v, want PartialBulkFailure", err)
	}
	if !reflect.DeepEqual(succeeded, []string{"c1"}) || !reflect.DeepEqual(pbf.FailedIDs(), []string{"c2"}) {
		t.Errorf("succeeded=%v failed=%v", succeeded, pbf.FailedIDs())
	}
	if got := c.SelectionState().IDs; !reflect.DeepEqual(got, []string{"c2"}) {
		t.Errorf("selection = %v, want [c2]", got)
	}
	if _, ok := c.Contact("c1"); ok {
		t.Error("c1 still present")
	}

	var deletes int
	for _, e := range c.ActivityFeed() {
		if e.Action == models.ActionDelete {
			deletes++
		}
	}
	if deletes != 1 {
		t.Errorf("DELETE entries in feed = %d, want 1", deletes)
	}
}

func TestDeleteSelectedEmpty(t *testing.T) {
	c := loaded(t, newMemStore(fixture()...))
	got, err := c.DeleteSelected(context.Background())
	if err != nil || got != nil {
		t.Errorf("DeleteSelected on empty selection = %v, %v", got, err)
	}
}

func TestToggleFavoriteRollbackThroughController(t *testing.T) {
	store := newMemStore(fixture()...)
	store.failIDs["c1"] = true
	c := loaded(t, store)

	if _, err := c.ToggleFavorite(context.Background(), "c1"); err == nil {
		t.Fatal("expected error")
	}
	ct, _ := c.Contact("c1")
	if ct.Favorite {
		t.Error("favorite not rolled back")
	}
	if c.Pending("c1") {
		t.Error("c1 still pending")
	}
	if len(c.ActivityFeed()) != 0 {
		t.Errorf("feed = %+v, want empty", c.ActivityFeed())
	}
}

func TestCreateAndDetail(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return now.Add(time.Duration(tick) * time.Minute)
	}
	c := New(newMemStore(fixture()...), WithClock(clock))
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	created, err := c.Create(context.Background(), models.ContactDraft{Name: "Eve", Email: "eve@acme.io", Company: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := c.Update(context.Background(), created.ID, models.ContactDraft{Name: "Eve", Email: "eve@acme.io", Phone: "555"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := c.ToggleFavorite(context.Background(), "c1"); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}

	d, err := c.Detail(created.ID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if d.Contact.Phone != "555" {
		t.Errorf("detail contact = %+v", d.Contact)
	}
	if len(d.Recent) != 2 || d.Recent[0].Action != models.ActionUpdate || d.Recent[1].Action != models.ActionCreate {
		t.Errorf("recent = %+v, want [UPDATE CREATE]", d.Recent)
	}

	if _, err := c.Detail("ghost"); !errors.Is(err, mutation.ErrContactNotFound) {
		t.Errorf("Detail(ghost) err = %v", err)
	}
}

func TestCreateDuplicateEmailRejected(t *testing.T) {
	store := newMemStore(fixture()...)
	c := loaded(t, store)

	_, err := c.Create(context.Background(), models.ContactDraft{Name: "Al", Email: "ALICE@acme.io"})
	var verr *mutation.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(store.contacts) != 4 {
		t.Error("store was written")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := loaded(t, newMemStore(fixture()...))
	p := c.Projection()
	p[0].Name = "mutated"
	if c.Projection()[0].Name == "mutated" {
		t.Error("Projection exposed internal slice")
	}
	all := c.Contacts()
	all[0].Name = "mutated"
	if c.Contacts()[0].Name == "mutated" {
		t.Error("Contacts exposed internal slice")
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	st := ComputeStats(nil)
	if st.Total != 0 || st.UniqueCompanies != 0 || st.FavoriteCount != 0 || len(st.Companies) != 0 {
		t.Errorf("stats = %+v", st)
	}
}
