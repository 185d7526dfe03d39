package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesikahq/clinic-core/internal/sequence"
)

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrInvalidPatientData = errors.New("invalid patient data")
)

type Service interface {
	Register(ctx context.Context, p *Patient) error
	Get(ctx context.Context, id string) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
}

type service struct {
	repo Repository
	seq  sequence.Generator
}

func NewService(repo Repository, seq sequence.Generator) Service {
	return &service{repo: repo, seq: seq}
}

// Register assigns the next medical record number and stores the patient.
// The number comes from an atomic counter, so concurrent registrations
// cannot collide.
func (s *service) Register(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("%w: first and last name are required", ErrInvalidPatientData)
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("%w: date of birth is required", ErrInvalidPatientData)
	}
	if p.Gender == "" {
		return fmt.Errorf("%w: gender is required", ErrInvalidPatientData)
	}

	n, err := s.seq.Next(ctx, sequence.NamePatientMRN, sequence.GlobalScope)
	if err != nil {
		return err
	}

	now := time.Now()
	p.ID = uuid.New().String()
	p.MedicalRecordNumber = sequence.FormatMRN(n)
	p.CreatedAt = now
	p.UpdatedAt = now

	return s.repo.Create(ctx, p)
}

func (s *service) Get(ctx context.Context, id string) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Patient, error) {
	return s.repo.List(ctx)
}
