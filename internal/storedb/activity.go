package storedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/rolo/internal/models"
)

// Order is a sort direction for activity listings.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ActivityQuery selects a page of the activity log.
type ActivityQuery struct {
	ContactName string // exact match; empty means all
	Order       Order  // defaults to OrderDesc
	Limit       int    // 0 means no limit
}

// AppendActivity stores an entry with a fresh id. Timestamps are strictly
// increasing in append order: an entry stamped at or before the newest stored
// one is moved just after it. A zero timestamp is replaced with the current
// time.
func (db *DB) AppendActivity(ctx context.Context, e models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	if !e.Action.IsValid() {
		return models.ActivityLogEntry{}, fmt.Errorf("invalid action %q", e.Action)
	}
	e.ID = uuid.NewString()
	if e.Timestamp.IsZero() {
		e.Timestamp = db.now()
	}
	e.Timestamp = e.Timestamp.UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.ActivityLogEntry{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var newest string
	err = tx.QueryRowContext(ctx, `SELECT timestamp FROM activity_logs ORDER BY timestamp DESC LIMIT 1`).Scan(&newest)
	switch {
	case err == nil:
		last, perr := parseTime(newest)
		if perr != nil {
			return models.ActivityLogEntry{}, fmt.Errorf("parse newest timestamp %q: %w", newest, perr)
		}
		if !e.Timestamp.After(last) {
			e.Timestamp = last.Add(time.Microsecond)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return models.ActivityLogEntry{}, fmt.Errorf("read newest timestamp: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO activity_logs (id, action, contact_name, timestamp) VALUES (?, ?, ?, ?)`,
		e.ID, string(e.Action), e.ContactName, formatTime(e.Timestamp),
	)
	if err != nil {
		return models.ActivityLogEntry{}, fmt.Errorf("insert activity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.ActivityLogEntry{}, fmt.Errorf("commit: %w", err)
	}
	return e, nil
}

// ListActivity returns activity entries ordered by timestamp.
func (db *DB) ListActivity(ctx context.Context, q ActivityQuery) ([]models.ActivityLogEntry, error) {
	query := `SELECT id, action, contact_name, timestamp FROM activity_logs`
	var args []any
	if q.ContactName != "" {
		query += ` WHERE contact_name = ?`
		args = append(args, q.ContactName)
	}
	if q.Order == OrderAsc {
		query += ` ORDER BY timestamp ASC, rowid ASC`
	} else {
		query += ` ORDER BY timestamp DESC, rowid DESC`
	}
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	entries := []models.ActivityLogEntry{}
	for rows.Next() {
		var e models.ActivityLogEntry
		var action, ts string
		if err := rows.Scan(&e.ID, &action, &e.ContactName, &ts); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.Action = models.ActionType(action)
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountActivity returns the number of stored activity entries.
func (db *DB) CountActivity(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activity: %w", err)
	}
	return n, nil
}
