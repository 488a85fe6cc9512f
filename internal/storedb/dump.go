package storedb

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/rolo/internal/models"
)

// ErrNotEmpty is returned by Import when the database already holds records.
var ErrNotEmpty = errors.New("database is not empty")

// Dump is the whole database in the db.json layout json-server uses.
type Dump struct {
	Contacts     []models.Contact          `json:"contacts"`
	ActivityLogs []models.ActivityLogEntry `json:"activityLogs"`
}

// Counts summarizes the database for admin tooling.
type Counts struct {
	Contacts      int `json:"contacts"`
	Favorites     int `json:"favorites"`
	ActivityLogs  int `json:"activity_logs"`
	SchemaVersion int `json:"schema_version"`
}

// Export reads every contact and activity entry, activity oldest first.
func (db *DB) Export(ctx context.Context) (Dump, error) {
	contacts, err := db.ListContacts(ctx)
	if err != nil {
		return Dump{}, err
	}
	entries, err := db.ListActivity(ctx, ActivityQuery{Order: OrderAsc})
	if err != nil {
		return Dump{}, err
	}
	return Dump{Contacts: contacts, ActivityLogs: entries}, nil
}

// Import loads d into an empty database in one transaction. Ids and
// timestamps are kept when present and generated otherwise. Activity entries
// are stored in timestamp order with the same strict ordering AppendActivity
// enforces.
func (db *DB) Import(ctx context.Context, d Dump) (Counts, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return Counts{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM contacts) + (SELECT COUNT(*) FROM activity_logs)`,
	).Scan(&existing); err != nil {
		return Counts{}, fmt.Errorf("count records: %w", err)
	}
	if existing > 0 {
		return Counts{}, ErrNotEmpty
	}

	var counts Counts
	now := db.now().UTC()
	for i, c := range d.Contacts {
		c.Name = strings.TrimSpace(c.Name)
		c.Email = strings.TrimSpace(c.Email)
		c.Phone = strings.TrimSpace(c.Phone)
		c.Company = strings.TrimSpace(c.Company)
		if c.Name == "" || c.Email == "" {
			return Counts{}, fmt.Errorf("contact %d: name and email are required", i)
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if err := checkUnique(ctx, tx, c); err != nil {
			return Counts{}, fmt.Errorf("contact %d (%s): %w", i, c.Email, err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (id, name, email, phone, company, favorite, created_at, seq)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Email, c.Phone, c.Company, c.Favorite, formatTime(c.CreatedAt.UTC()), i+1,
		)
		if err != nil {
			return Counts{}, mapWriteError(fmt.Sprintf("insert contact %d", i), err)
		}
		counts.Contacts++
		if c.Favorite {
			counts.Favorites++
		}
	}

	entries := slices.Clone(d.ActivityLogs)
	for i := range entries {
		if entries[i].Timestamp.IsZero() {
			entries[i].Timestamp = now
		}
	}
	slices.SortStableFunc(entries, func(a, b models.ActivityLogEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	var last time.Time
	for i, e := range entries {
		if !e.Action.IsValid() {
			return Counts{}, fmt.Errorf("activity %d: invalid action %q", i, e.Action)
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		ts := e.Timestamp.UTC()
		if !last.IsZero() && !ts.After(last) {
			ts = last.Add(time.Microsecond)
		}
		last = ts
		_, err := tx.ExecContext(ctx,
			`INSERT INTO activity_logs (id, action, contact_name, timestamp) VALUES (?, ?, ?, ?)`,
			e.ID, string(e.Action), e.ContactName, formatTime(ts),
		)
		if err != nil {
			return Counts{}, fmt.Errorf("insert activity %d: %w", i, err)
		}
		counts.ActivityLogs++
	}

	if err := tx.Commit(); err != nil {
		return Counts{}, fmt.Errorf("commit: %w", err)
	}
	counts.SchemaVersion = SchemaVersion
	return counts, nil
}

// Count returns record totals and the schema version.
func (db *DB) Count(ctx context.Context) (Counts, error) {
	var c Counts
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(favorite), 0) FROM contacts`,
	).Scan(&c.Contacts, &c.Favorites)
	if err != nil {
		return Counts{}, fmt.Errorf("count contacts: %w", err)
	}
	if c.ActivityLogs, err = db.CountActivity(ctx); err != nil {
		return Counts{}, err
	}
	c.SchemaVersion = db.SchemaVersion()
	return c, nil
}
