package medrecord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/patient"
)

var (
	ErrRecordNotFound = errors.New("medical record not found")
	ErrNotADoctor     = errors.New("user is not a doctor")
)

type PatientDirectory interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
}

type Service interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, patientID string) ([]*Record, error)
}

type service struct {
	repo     Repository
	patients PatientDirectory
	users    UserDirectory
}

func NewService(repo Repository, patients PatientDirectory, users UserDirectory) Service {
	return &service{repo: repo, patients: patients, users: users}
}

func (s *service) Create(ctx context.Context, rec *Record) error {
	if _, err := s.patients.Get(ctx, rec.PatientID); err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return fmt.Errorf("%w: %s", patient.ErrPatientNotFound, rec.PatientID)
		}
		return err
	}

	doctor, err := s.users.GetUserByID(ctx, rec.DoctorID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return fmt.Errorf("%w: %s", auth.ErrUserNotFound, rec.DoctorID)
		}
		return err
	}
	if !doctor.HasRole(auth.RoleDoctor) {
		return fmt.Errorf("%w: %s", ErrNotADoctor, rec.DoctorID)
	}

	rec.ID = uuid.New().String()
	if rec.VisitDate.IsZero() {
		rec.VisitDate = time.Now()
	}
	rec.CreatedAt = time.Now()

	return s.repo.Create(ctx, rec)
}

func (s *service) Get(ctx context.Context, id string) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, patientID string) ([]*Record, error) {
	return s.repo.List(ctx, patientID)
}
