// Package sequence assigns the business numbers used across the clinic:
// medical record numbers, invoice numbers, and per-day queue numbers.
//
// Each sequence lives in a counter row keyed by (name, scope). Advancing a
// sequence is a single atomic upsert, so two concurrent registrations can
// never mint the same number; the original read-then-insert design could.
package sequence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sequence names. GlobalScope is the scope used by sequences that are not
// partitioned; queue numbers use the queue date (YYYY-MM-DD) as scope.
const (
	NamePatientMRN    = "patient_mrn"
	NameInvoiceNumber = "invoice_number"
	NameQueueNumber   = "queue_number"

	GlobalScope = ""
)

// Generator hands out the next number in a (name, scope) sequence.
// The first number in a fresh scope is always 1.
type Generator interface {
	Next(ctx context.Context, name, scope string) (int64, error)
}

type pgGenerator struct {
	db *pgxpool.Pool
}

func NewPGGenerator(db *pgxpool.Pool) Generator {
	return &pgGenerator{db: db}
}

func (g *pgGenerator) Next(ctx context.Context, name, scope string) (int64, error) {
	var value int64
	err := g.db.QueryRow(ctx, `
		INSERT INTO sequences (name, scope, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (name, scope)
		DO UPDATE SET value = sequences.value + 1, updated_at = NOW()
		RETURNING value`,
		name, scope).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s/%s: %w", name, scope, err)
	}
	return value, nil
}

// FormatMRN renders a patient medical record number, e.g. 7 -> "MRN000007".
func FormatMRN(n int64) string {
	return fmt.Sprintf("MRN%06d", n)
}

// FormatInvoiceNumber renders an invoice number, e.g. 42 -> "INV000042".
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("INV%06d", n)
}
