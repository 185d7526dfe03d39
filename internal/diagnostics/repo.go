package diagnostics

import "context"

// ListFilter narrows listing by patient and/or status; empty fields match
// everything.
type ListFilter struct {
	PatientID string
	Status    string
}

type LabRepository interface {
	Create(ctx context.Context, t *LabTest) error
	GetByID(ctx context.Context, id string) (*LabTest, error)
	List(ctx context.Context, filter ListFilter) ([]*LabTest, error)
	Update(ctx context.Context, t *LabTest) error
}

type RadiologyRepository interface {
	Create(ctx context.Context, e *RadiologyExam) error
	GetByID(ctx context.Context, id string) (*RadiologyExam, error)
	List(ctx context.Context, filter ListFilter) ([]*RadiologyExam, error)
	Update(ctx context.Context, e *RadiologyExam) error
}
