package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/graymont/rent-reminder/internal/recipients"
)

// RecipientStore is the Postgres-backed recipient repository.
type RecipientStore struct{ db *sql.DB }

// NewRecipientStore creates a recipient store.
func NewRecipientStore(db *sql.DB) *RecipientStore { return &RecipientStore{db: db} }

// List returns every recipient in spreadsheet order.
func (s *RecipientStore) List(ctx context.Context) ([]Recipient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone_number, send_flag, position, created_at, updated_at
		FROM reminder_recipients
		ORDER BY position, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	var out []Recipient
	for rows.Next() {
		var r Recipient
		if err := rows.Scan(&r.ID, &r.Name, &r.PhoneNumber, &r.SendFlag, &r.Position, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns one recipient by ID.
func (s *RecipientStore) Get(ctx context.Context, id uuid.UUID) (*Recipient, error) {
	r := &Recipient{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone_number, send_flag, position, created_at, updated_at
		FROM reminder_recipients
		WHERE id = $1
	`, id).Scan(&r.ID, &r.Name, &r.PhoneNumber, &r.SendFlag, &r.Position, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	return r, nil
}

// Create inserts a new recipient at the end of the list.
func (s *RecipientStore) Create(ctx context.Context, rec recipients.Record) (*Recipient, error) {
	r := &Recipient{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reminder_recipients (id, name, phone_number, send_flag, position)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM reminder_recipients))
		RETURNING id, name, phone_number, send_flag, position, created_at, updated_at
	`, uuid.New(), rec.Name, rec.PhoneNumber, rec.SendFlag).Scan(
		&r.ID, &r.Name, &r.PhoneNumber, &r.SendFlag, &r.Position, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create recipient: %w", err)
	}
	return r, nil
}

// Update overwrites a recipient's three canonical fields.
func (s *RecipientStore) Update(ctx context.Context, id uuid.UUID, rec recipients.Record) (*Recipient, error) {
	r := &Recipient{}
	err := s.db.QueryRowContext(ctx, `
		UPDATE reminder_recipients
		SET name = $2, phone_number = $3, send_flag = $4, updated_at = now()
		WHERE id = $1
		RETURNING id, name, phone_number, send_flag, position, created_at, updated_at
	`, id, rec.Name, rec.PhoneNumber, rec.SendFlag).Scan(
		&r.ID, &r.Name, &r.PhoneNumber, &r.SendFlag, &r.Position, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update recipient: %w", err)
	}
	return r, nil
}

// Delete removes a recipient.
func (s *RecipientStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminder_recipients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recipient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAll swaps the whole list for a freshly normalized table, preserving
// the table's row order. Used by the CSV upload and default-file bootstrap
// paths; all-or-nothing inside one transaction.
func (s *RecipientStore) ReplaceAll(ctx context.Context, records []recipients.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_recipients`); err != nil {
		return fmt.Errorf("clear recipients: %w", err)
	}

	for i, rec := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reminder_recipients (id, name, phone_number, send_flag, position)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), rec.Name, rec.PhoneNumber, rec.SendFlag, i)
		if err != nil {
			return fmt.Errorf("insert recipient %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListSendable returns recipients with the send flag set and a non-empty
// phone number, in spreadsheet order. These are the rows a run snapshots.
func (s *RecipientStore) ListSendable(ctx context.Context) ([]Recipient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone_number, send_flag, position, created_at, updated_at
		FROM reminder_recipients
		WHERE send_flag = TRUE AND phone_number <> ''
		ORDER BY position, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list sendable: %w", err)
	}
	defer rows.Close()

	var out []Recipient
	for rows.Next() {
		var r Recipient
		if err := rows.Scan(&r.ID, &r.Name, &r.PhoneNumber, &r.SendFlag, &r.Position, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of stored recipients.
func (s *RecipientStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reminder_recipients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count recipients: %w", err)
	}
	return n, nil
}
