package storedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/marcus/rolo/internal/models"
)

const contactColumns = `id, name, email, phone, company, favorite, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (models.Contact, error) {
	var c models.Contact
	var created string
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Favorite, &created); err != nil {
		return models.Contact{}, err
	}
	t, err := parseTime(created)
	if err != nil {
		return models.Contact{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	c.CreatedAt = t
	return c, nil
}

// ListContacts returns all contacts in insertion order.
func (db *DB) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// GetContact returns the contact with the given id.
func (db *DB) GetContact(ctx context.Context, id string) (models.Contact, error) {
	c, err := scanContact(db.conn.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Contact{}, ErrNotFound
	}
	if err != nil {
		return models.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// CreateContact inserts a new contact with a fresh id and creation time.
func (db *DB) CreateContact(ctx context.Context, draft models.ContactDraft) (models.Contact, error) {
	draft = draft.Trimmed()
	c := models.Contact{
		ID:        uuid.NewString(),
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Company:   draft.Company,
		CreatedAt: db.now().UTC(),
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Contact{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkUnique(ctx, tx, c); err != nil {
		return models.Contact{}, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, phone, company, favorite, created_at, seq)
		 VALUES (?, ?, ?, ?, ?, 0, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM contacts))`,
		c.ID, c.Name, c.Email, c.Phone, c.Company, formatTime(c.CreatedAt),
	)
	if err != nil {
		return models.Contact{}, mapWriteError("insert contact", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Contact{}, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}

// UpdateContact replaces the mutable fields of contact id. The id and
// creation time of the stored record are never changed.
func (db *DB) UpdateContact(ctx context.Context, id string, next models.Contact) (models.Contact, error) {
	return db.modify(ctx, id, func(cur models.Contact) models.Contact {
		cur.Name = strings.TrimSpace(next.Name)
		cur.Email = strings.TrimSpace(next.Email)
		cur.Phone = strings.TrimSpace(next.Phone)
		cur.Company = strings.TrimSpace(next.Company)
		cur.Favorite = next.Favorite
		return cur
	})
}

// PatchContact applies the non-nil fields of patch to contact id.
func (db *DB) PatchContact(ctx context.Context, id string, patch models.ContactPatch) (models.Contact, error) {
	return db.modify(ctx, id, func(cur models.Contact) models.Contact {
		next := patch.Apply(cur)
		next.Name = strings.TrimSpace(next.Name)
		next.Email = strings.TrimSpace(next.Email)
		next.Phone = strings.TrimSpace(next.Phone)
		next.Company = strings.TrimSpace(next.Company)
		return next
	})
}

func (db *DB) modify(ctx context.Context, id string, change func(models.Contact) models.Contact) (models.Contact, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Contact{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	cur, err := scanContact(tx.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Contact{}, ErrNotFound
	}
	if err != nil {
		return models.Contact{}, fmt.Errorf("get contact: %w", err)
	}

	next := change(cur)
	next.ID, next.CreatedAt = cur.ID, cur.CreatedAt

	if err := checkUnique(ctx, tx, next); err != nil {
		return models.Contact{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE contacts SET name = ?, email = ?, phone = ?, company = ?, favorite = ? WHERE id = ?`,
		next.Name, next.Email, next.Phone, next.Company, next.Favorite, id,
	)
	if err != nil {
		return models.Contact{}, mapWriteError("update contact", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Contact{}, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

// DeleteContact removes contact id. Its activity entries are kept.
func (db *DB) DeleteContact(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// checkUnique looks for another contact holding c's email or phone, so the
// caller learns which field collided.
func checkUnique(ctx context.Context, tx *sql.Tx, c models.Contact) error {
	var other string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM contacts WHERE lower(email) = lower(?) AND id != ? LIMIT 1`, c.Email, c.ID,
	).Scan(&other)
	switch {
	case err == nil:
		return &ConflictError{Field: "email"}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check email: %w", err)
	}

	if c.Phone == "" {
		return nil
	}
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM contacts WHERE phone = ? AND id != ? LIMIT 1`, c.Phone, c.ID,
	).Scan(&other)
	switch {
	case err == nil:
		return &ConflictError{Field: "phone"}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check phone: %w", err)
	}
	return nil
}

func mapWriteError(op string, err error) error {
	if isUniqueViolation(err) {
		field := "email"
		if strings.Contains(err.Error(), "phone") {
			field = "phone"
		}
		return &ConflictError{Field: field}
	}
	return fmt.Errorf("%s: %w", op, err)
}
