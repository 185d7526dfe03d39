package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	db *pgxpool.Pool
}

func NewRepoPG(db *pgxpool.Pool) Repository {
	return &repoPG{db: db}
}

const entryCols = `id, patient_id, queue_number, queue_date, status, priority, notes, created_at, updated_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.PatientID, &e.QueueNumber, &e.QueueDate, &e.Status, &e.Priority,
		&e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO queue_entries (id, patient_id, queue_number, queue_date, status, priority, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.PatientID, e.QueueNumber, e.QueueDate, e.Status, e.Priority, e.Notes, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert queue entry: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Entry, error) {
	e, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryCols+` FROM queue_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *repoPG) ListByDate(ctx context.Context, date time.Time) ([]*Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+entryCols+` FROM queue_entries
		WHERE queue_date = $1
		ORDER BY priority DESC, queue_number ASC`,
		date)
	if err != nil {
		return nil, fmt.Errorf("failed to query queue entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE queue_entries SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update queue entry status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}
