package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// QueueStore manages reminder runs and their send queue.
type QueueStore struct{ db *sql.DB }

// NewQueueStore creates a queue store.
func NewQueueStore(db *sql.DB) *QueueStore { return &QueueStore{db: db} }

// CreateRun inserts a run row and bulk-enqueues a snapshot of the given
// recipients using COPY. The whole enqueue is one transaction: a run either
// exists with its full queue or not at all.
func (s *QueueStore) CreateRun(ctx context.Context, triggeredBy string, recs []Recipient) (*Run, error) {
	run := &Run{
		ID:          uuid.New(),
		TriggeredBy: triggeredBy,
		Total:       len(recs),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO reminder_runs (id, triggered_by, total)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, run.ID, run.TriggeredBy, run.Total).Scan(&run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"reminder_queue",
		"id", "run_id", "recipient_id", "name", "phone_number", "status",
	))
	if err != nil {
		return nil, fmt.Errorf("prepare queue copy: %w", err)
	}

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, uuid.New(), run.ID, rec.ID, rec.Name, rec.PhoneNumber, StatusQueued); err != nil {
			stmt.Close()
			return nil, fmt.Errorf("copy queue row: %w", err)
		}
	}
	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return nil, fmt.Errorf("flush queue copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return nil, fmt.Errorf("close queue copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

// GetRun returns one run by ID.
func (s *QueueStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run := &Run{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, triggered_by, total, created_at
		FROM reminder_runs
		WHERE id = $1
	`, id).Scan(&run.ID, &run.TriggeredBy, &run.Total, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ClaimBatch atomically claims up to limit queued items for a worker.
// SKIP LOCKED lets concurrent workers claim disjoint batches without
// serializing on each other.
func (s *QueueStore) ClaimBatch(ctx context.Context, workerID string, limit int) ([]QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		UPDATE reminder_queue
		SET status = $1, claimed_by = $2, claimed_at = now()
		WHERE id IN (
			SELECT id FROM reminder_queue
			WHERE status = $3
			ORDER BY queued_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, run_id, COALESCE(recipient_id, '00000000-0000-0000-0000-000000000000'::uuid), name, phone_number
	`, StatusSending, workerID, StatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("claim batch: %w", err)
	}
	defer rows.Close()

	var items []QueueItem
	for rows.Next() {
		item := QueueItem{Status: StatusSending}
		if err := rows.Scan(&item.ID, &item.RunID, &item.RecipientID, &item.Name, &item.PhoneNumber); err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MarkSent records a successful delivery attempt.
func (s *QueueStore) MarkSent(ctx context.Context, id uuid.UUID, messageSID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE reminder_queue
		SET status = $2, message_sid = $3, finished_at = now()
		WHERE id = $1
	`, id, StatusSent, messageSID)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

// MarkFailed records a failed delivery attempt. Failure of one item never
// touches its siblings.
func (s *QueueStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE reminder_queue
		SET status = $2, last_error = $3, finished_at = now()
		WHERE id = $1
	`, id, StatusFailed, reason)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// Progress aggregates queue states for a run.
func (s *QueueStore) Progress(ctx context.Context, runID uuid.UUID) (*RunProgress, error) {
	p := &RunProgress{RunID: runID}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status IN ('queued', 'sending')),
		       COUNT(*) FILTER (WHERE status = 'sent'),
		       COUNT(*) FILTER (WHERE status = 'failed')
		FROM reminder_queue
		WHERE run_id = $1
	`, runID).Scan(&p.Total, &p.Queued, &p.Sent, &p.Failed)
	if err != nil {
		return nil, fmt.Errorf("run progress: %w", err)
	}
	return p, nil
}
