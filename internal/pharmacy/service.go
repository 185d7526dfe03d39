package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/money"
	"github.com/mesikahq/clinic-core/internal/patient"
)

var (
	ErrMedicationNotFound   = errors.New("medication not found")
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrNotPending           = errors.New("prescription is not pending")
	ErrInvalidOperation     = errors.New("invalid stock operation")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidStatus        = errors.New("invalid prescription status")
	ErrMissingField         = errors.New("missing required field")
	ErrNoItems              = errors.New("prescription requires at least one item")
	ErrNotADoctor           = errors.New("user is not a doctor")
)

type PatientDirectory interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
}

type Service interface {
	CreateMedication(ctx context.Context, m *Medication) error
	GetMedication(ctx context.Context, id string) (*Medication, error)
	ListMedications(ctx context.Context, lowStockOnly bool) ([]*Medication, error)
	UpdateMedication(ctx context.Context, m *Medication) error
	// UpdateStock adjusts inventory by qty with op add or subtract.
	// Returns the resulting quantity.
	UpdateStock(ctx context.Context, id string, qty int, op string) (int, error)

	CreatePrescription(ctx context.Context, p *Prescription) error
	GetPrescription(ctx context.Context, id string) (*Prescription, error)
	ListPrescriptions(ctx context.Context, filter PrescriptionFilter) ([]*Prescription, error)
	DispensePrescription(ctx context.Context, id, dispensedBy string) (*Prescription, error)
}

type service struct {
	medications   MedicationRepository
	prescriptions PrescriptionRepository
	patients      PatientDirectory
	users         UserDirectory
}

func NewService(medications MedicationRepository, prescriptions PrescriptionRepository, patients PatientDirectory, users UserDirectory) Service {
	return &service{medications: medications, prescriptions: prescriptions, patients: patients, users: users}
}

func (s *service) CreateMedication(ctx context.Context, m *Medication) error {
	if m.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if m.StockQuantity < 0 || m.MinStockLevel < 0 {
		return fmt.Errorf("%w: stock levels", ErrInvalidQuantity)
	}

	m.ID = uuid.New().String()
	if m.Unit == "" {
		m.Unit = "tablet"
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	return s.medications.Create(ctx, m)
}

func (s *service) GetMedication(ctx context.Context, id string) (*Medication, error) {
	return s.medications.GetByID(ctx, id)
}

func (s *service) ListMedications(ctx context.Context, lowStockOnly bool) ([]*Medication, error) {
	return s.medications.List(ctx, lowStockOnly)
}

func (s *service) UpdateMedication(ctx context.Context, m *Medication) error {
	if m.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	return s.medications.Update(ctx, m)
}

func (s *service) UpdateStock(ctx context.Context, id string, qty int, op string) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	switch op {
	case StockAdd:
		return s.medications.AdjustStock(ctx, id, qty)
	case StockSubtract:
		return s.medications.AdjustStock(ctx, id, -qty)
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidOperation, op)
	}
}

func (s *service) CreatePrescription(ctx context.Context, p *Prescription) error {
	if len(p.Items) == 0 {
		return ErrNoItems
	}
	if _, err := s.patients.Get(ctx, p.PatientID); err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return fmt.Errorf("%w: %s", patient.ErrPatientNotFound, p.PatientID)
		}
		return err
	}
	doctor, err := s.users.GetUserByID(ctx, p.DoctorID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return fmt.Errorf("%w: %s", auth.ErrUserNotFound, p.DoctorID)
		}
		return err
	}
	if !doctor.HasRole(auth.RoleDoctor) {
		return fmt.Errorf("%w: %s", ErrNotADoctor, p.DoctorID)
	}

	p.ID = uuid.New().String()
	p.Status = PrescriptionPending
	p.CreatedAt = time.Now()
	p.DispensedBy = nil
	p.DispensedAt = nil

	// snapshot unit prices at prescription time
	var total money.Cents
	for _, item := range p.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidQuantity, item.Quantity)
		}
		med, err := s.medications.GetByID(ctx, item.MedicationID)
		if err != nil {
			if errors.Is(err, ErrMedicationNotFound) {
				return fmt.Errorf("%w: %s", ErrMedicationNotFound, item.MedicationID)
			}
			return err
		}
		item.ID = uuid.New().String()
		item.PrescriptionID = p.ID
		item.UnitPrice = med.UnitPrice
		total += money.LineTotal(med.UnitPrice, item.Quantity)
	}
	p.TotalAmount = total

	return s.prescriptions.Create(ctx, p)
}

func (s *service) GetPrescription(ctx context.Context, id string) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *service) ListPrescriptions(ctx context.Context, filter PrescriptionFilter) ([]*Prescription, error) {
	if filter.Status != "" && !ValidPrescriptionStatuses[filter.Status] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, filter.Status)
	}
	return s.prescriptions.List(ctx, filter)
}

func (s *service) DispensePrescription(ctx context.Context, id, dispensedBy string) (*Prescription, error) {
	if _, err := s.users.GetUserByID(ctx, dispensedBy); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", auth.ErrUserNotFound, dispensedBy)
		}
		return nil, err
	}
	return s.prescriptions.Dispense(ctx, id, dispensedBy, time.Now())
}
