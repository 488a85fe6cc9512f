package storedb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/marcus/rolo/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreate(t *testing.T, db *DB, d models.ContactDraft) models.Contact {
	t.Helper()
	c, err := db.CreateContact(context.Background(), d)
	if err != nil {
		t.Fatalf("create %q: %v", d.Name, err)
	}
	return c
}

// --- Contact tests ---

func TestCreateAndListContacts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := mustCreate(t, db, models.ContactDraft{Name: " Alice ", Email: "alice@x.io", Company: "Acme"})
	b := mustCreate(t, db, models.ContactDraft{Name: "Bob", Email: "bob@x.io", Phone: "555"})

	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not unique: %q %q", a.ID, b.ID)
	}
	if a.Name != "Alice" {
		t.Errorf("name not trimmed: %q", a.Name)
	}
	if a.CreatedAt.IsZero() || a.Favorite {
		t.Errorf("created = %+v", a)
	}

	got, err := db.ListContacts(ctx)
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Fatalf("ListContacts = %+v, want insertion order", got)
	}
	if !got[0].CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("CreatedAt round trip: %v != %v", got[0].CreatedAt, a.CreatedAt)
	}
	if got[1].Phone != "555" || got[0].Company != "Acme" {
		t.Errorf("fields lost: %+v", got)
	}
}

func TestListContactsEmpty(t *testing.T) {
	db := newTestDB(t)
	got, err := db.ListContacts(context.Background())
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", got)
	}
}

func TestUniqueConstraints(t *testing.T) {
	db := newTestDB(t)
	mustCreate(t, db, models.ContactDraft{Name: "Alice", Email: "alice@x.io", Phone: "111"})

	tests := []struct {
		name  string
		draft models.ContactDraft
		field string
	}{
		{"email case-insensitive", models.ContactDraft{Name: "A2", Email: "ALICE@X.IO"}, "email"},
		{"phone exact", models.ContactDraft{Name: "A3", Email: "a3@x.io", Phone: "111"}, "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.CreateContact(context.Background(), tt.draft)
			if !errors.Is(err, ErrConflict) {
				t.Fatalf("err = %v, want ErrConflict", err)
			}
			var ce *ConflictError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("conflict = %+v, want field %s", ce, tt.field)
			}
		})
	}

	// Empty phones never collide.
	mustCreate(t, db, models.ContactDraft{Name: "B", Email: "b@x.io"})
	mustCreate(t, db, models.ContactDraft{Name: "C", Email: "c@x.io"})
}

func TestUpdateContactKeepsIdentity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := mustCreate(t, db, models.ContactDraft{Name: "Alice", Email: "alice@x.io", Phone: "111"})
	mustCreate(t, db, models.ContactDraft{Name: "Bob", Email: "bob@x.io", Phone: "222"})

	next := models.Contact{ID: "ignored", Name: "Alicia", Email: "alice@x.io", Phone: "111", Favorite: true,
		CreatedAt: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)}
	got, err := db.UpdateContact(ctx, a.ID, next)
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	if got.ID != a.ID || !got.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("identity changed: %+v", got)
	}
	if got.Name != "Alicia" || !got.Favorite {
		t.Errorf("update not applied: %+v", got)
	}

	next.Phone = "222"
	if _, err := db.UpdateContact(ctx, a.ID, next); !errors.Is(err, ErrConflict) {
		t.Errorf("phone collision err = %v, want ErrConflict", err)
	}
	if _, err := db.UpdateContact(ctx, "missing", next); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
}

func TestPatchContactFavorite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := mustCreate(t, db, models.ContactDraft{Name: "Alice", Email: "alice@x.io"})

	fav := true
	got, err := db.PatchContact(ctx, a.ID, models.ContactPatch{Favorite: &fav})
	if err != nil {
		t.Fatalf("PatchContact: %v", err)
	}
	if !got.Favorite || got.Name != "Alice" {
		t.Errorf("patched = %+v", got)
	}

	stored, err := db.GetContact(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetContact: %v", err)
	}
	if !stored.Favorite {
		t.Error("favorite not persisted")
	}
}

func TestDeleteContact(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := mustCreate(t, db, models.ContactDraft{Name: "Alice", Email: "alice@x.io"})

	if err := db.DeleteContact(ctx, a.ID); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}
	if err := db.DeleteContact(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if _, err := db.GetContact(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetContact err = %v, want ErrNotFound", err)
	}

	// The email is free again.
	mustCreate(t, db, models.ContactDraft{Name: "Alice", Email: "alice@x.io"})
}

// --- Activity tests ---

func TestAppendActivityMonotonic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ts := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	var saved []models.ActivityLogEntry
	for _, name := range []string{"a", "b", "c"} {
		e, err := db.AppendActivity(ctx, models.ActivityLogEntry{Action: models.ActionCreate, ContactName: name, Timestamp: ts})
		if err != nil {
			t.Fatalf("AppendActivity: %v", err)
		}
		saved = append(saved, e)
	}
	for i := 1; i < len(saved); i++ {
		if !saved[i].Timestamp.After(saved[i-1].Timestamp) {
			t.Errorf("entry %d timestamp %v not after %v", i, saved[i].Timestamp, saved[i-1].Timestamp)
		}
	}

	got, err := db.ListActivity(ctx, ActivityQuery{Limit: 2})
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(got) != 2 || got[0].ContactName != "c" || got[1].ContactName != "b" {
		t.Errorf("desc page = %+v", got)
	}

	asc, err := db.ListActivity(ctx, ActivityQuery{Order: OrderAsc})
	if err != nil {
		t.Fatalf("ListActivity asc: %v", err)
	}
	if len(asc) != 3 || asc[0].ContactName != "a" {
		t.Errorf("asc = %+v", asc)
	}
}

func TestAppendActivityDefaultsAndValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	fixed := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)
	db.now = func() time.Time { return fixed }

	e, err := db.AppendActivity(ctx, models.ActivityLogEntry{Action: models.ActionDelete, ContactName: "Zed"})
	if err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	if !e.Timestamp.Equal(fixed) || e.ID == "" {
		t.Errorf("entry = %+v", e)
	}

	if _, err := db.AppendActivity(ctx, models.ActivityLogEntry{Action: "RENAME", ContactName: "Zed"}); err == nil {
		t.Error("expected error for unknown action")
	}
	if n, _ := db.CountActivity(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestListActivityByContact(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for _, name := range []string{"Alice", "Bob", "Alice"} {
		if _, err := db.AppendActivity(ctx, models.ActivityLogEntry{Action: models.ActionUpdate, ContactName: name}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := db.ListActivity(ctx, ActivityQuery{ContactName: "Alice"})
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

// --- File-backed tests ---

func TestOpenRunsMigrationsAndIsReadableByStockSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store", "rolo.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if v := db.SchemaVersion(); v != SchemaVersion {
		t.Errorf("schema version = %d, want %d", v, SchemaVersion)
	}
	a := mustCreate(t, db, models.ContactDraft{Name: "Alice", Email: "alice@x.io"})
	if _, err := db.AppendActivity(context.Background(), models.ActivityLogEntry{Action: models.ActionCreate, ContactName: "Alice"}); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open with mattn driver: %v", err)
	}
	defer raw.Close()

	var name, created string
	if err := raw.QueryRow(`SELECT name, created_at FROM contacts WHERE id = ?`, a.ID).Scan(&name, &created); err != nil {
		t.Fatalf("read contact: %v", err)
	}
	if name != "Alice" {
		t.Errorf("name = %q", name)
	}
	if parsed, err := parseTime(created); err != nil || !parsed.Equal(a.CreatedAt) {
		t.Errorf("created_at = %q (%v)", created, err)
	}

	var n int
	if err := raw.QueryRow(`SELECT COUNT(*) FROM activity_logs`).Scan(&n); err != nil || n != 1 {
		t.Errorf("activity rows = %d (%v)", n, err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if ran, err := reopened.RunMigrations(); err != nil || ran != 0 {
		t.Errorf("RunMigrations on current db = %d, %v", ran, err)
	}
}
