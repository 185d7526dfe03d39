package pharmacy

import (
	"context"
	"time"
)

// PrescriptionFilter narrows listing; empty fields match everything.
type PrescriptionFilter struct {
	PatientID string
	Status    string
}

type MedicationRepository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id string) (*Medication, error)
	// List returns all medications, or only those at or below their
	// reorder threshold when lowStockOnly is set.
	List(ctx context.Context, lowStockOnly bool) ([]*Medication, error)
	Update(ctx context.Context, m *Medication) error
	// AdjustStock applies delta to the stock quantity atomically. A
	// negative delta that would drive the stock below zero fails with
	// a wrapped ErrInsufficientStock and leaves the row unchanged.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}

type PrescriptionRepository interface {
	// Create persists the prescription and its items in one transaction.
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id string) (*Prescription, error)
	List(ctx context.Context, filter PrescriptionFilter) ([]*Prescription, error)
	// Dispense flips a pending prescription to dispensed and decrements
	// each item's medication stock, all in one transaction. A
	// prescription that is not pending fails with ErrNotPending; an
	// item exceeding its medication's stock fails with a wrapped
	// ErrInsufficientStock. Either failure rolls back everything.
	Dispense(ctx context.Context, id, dispensedBy string, at time.Time) (*Prescription, error)
}
