package medrecord

import "context"

type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id string) (*Record, error)
	// List returns all records, or a single patient's when patientID is
	// non-empty, newest visit first.
	List(ctx context.Context, patientID string) ([]*Record, error)
}
