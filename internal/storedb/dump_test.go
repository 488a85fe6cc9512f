package storedb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marcus/rolo/internal/models"
)

func TestImportExport(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	in := Dump{
		Contacts: []models.Contact{
			{ID: "1", Name: "Alice", Email: "alice@example.com", Company: "Acme", Favorite: true, CreatedAt: base},
			{Name: " Bob ", Email: "bob@example.com"},
		},
		ActivityLogs: []models.ActivityLogEntry{
			{ID: "b", Action: models.ActionUpdate, ContactName: "Alice", Timestamp: base.Add(time.Minute)},
			{ID: "a", Action: models.ActionCreate, ContactName: "Alice", Timestamp: base},
			{ID: "c", Action: models.ActionCreate, ContactName: "Bob", Timestamp: base.Add(time.Minute)},
		},
	}

	counts, err := db.Import(ctx, in)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if counts.Contacts != 2 || counts.Favorites != 1 || counts.ActivityLogs != 3 {
		t.Errorf("counts = %+v", counts)
	}

	out, err := db.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(out.Contacts) != 2 || out.Contacts[0].ID != "1" || out.Contacts[1].Name != "Bob" || out.Contacts[1].ID == "" {
		t.Errorf("contacts = %+v", out.Contacts)
	}
	if !out.Contacts[0].CreatedAt.Equal(base) || !out.Contacts[0].Favorite {
		t.Errorf("alice = %+v", out.Contacts[0])
	}

	if len(out.ActivityLogs) != 3 {
		t.Fatalf("activity = %+v", out.ActivityLogs)
	}
	if out.ActivityLogs[0].ID != "a" || out.ActivityLogs[1].ID != "b" || out.ActivityLogs[2].ID != "c" {
		t.Errorf("activity order = %s %s %s", out.ActivityLogs[0].ID, out.ActivityLogs[1].ID, out.ActivityLogs[2].ID)
	}
	if !out.ActivityLogs[2].Timestamp.After(out.ActivityLogs[1].Timestamp) {
		t.Error("tied timestamps were not separated")
	}

	got, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got.Contacts != 2 || got.Favorites != 1 || got.ActivityLogs != 3 || got.SchemaVersion != SchemaVersion {
		t.Errorf("Count = %+v", got)
	}
}

func TestImportRequiresEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	mustCreate(t, db, models.ContactDraft{Name: "A", Email: "a@example.com"})

	_, err := db.Import(context.Background(), Dump{})
	if !errors.Is(err, ErrNotEmpty) {
		t.Fatalf("err = %v, want ErrNotEmpty", err)
	}
}

func TestImportRollsBackOnConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Import(ctx, Dump{Contacts: []models.Contact{
		{Name: "A", Email: "same@example.com"},
		{Name: "B", Email: "SAME@example.com"},
	}})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	contacts, err := db.ListContacts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 0 {
		t.Errorf("import was not rolled back: %+v", contacts)
	}
}
