package diagnostics

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
	ErrLabTestNotFound = errors.New("lab test not found")
	ErrExamNotFound    = errors.New("radiology exam not found")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrMissingField    = errors.New("missing required field")
)

type PatientDirectory interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
}

type Service interface {
	CreateLabTest(ctx context.Context, t *LabTest) error
	GetLabTest(ctx context.Context, id string) (*LabTest, error)
	ListLabTests(ctx context.Context, filter ListFilter) ([]*LabTest, error)
	UpdateLabTest(ctx context.Context, id string, upd *LabTestUpdate) (*LabTest, error)

	CreateRadiologyExam(ctx context.Context, e *RadiologyExam) error
	GetRadiologyExam(ctx context.Context, id string) (*RadiologyExam, error)
	ListRadiologyExams(ctx context.Context, filter ListFilter) ([]*RadiologyExam, error)
	UpdateRadiologyExam(ctx context.Context, id string, upd *RadiologyExamUpdate) (*RadiologyExam, error)
}

type service struct {
	labs     LabRepository
	exams    RadiologyRepository
	patients PatientDirectory
	users    UserDirectory
}

func NewService(labs LabRepository, exams RadiologyRepository, patients PatientDirectory, users UserDirectory) Service {
	return &service{labs: labs, exams: exams, patients: patients, users: users}
}

func (s *service) checkReferences(ctx context.Context, patientID, orderedBy string) error {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return fmt.Errorf("%w: %s", patient.ErrPatientNotFound, patientID)
		}
		return err
	}
	if _, err := s.users.GetUserByID(ctx, orderedBy); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return fmt.Errorf("%w: %s", auth.ErrUserNotFound, orderedBy)
		}
		return err
	}
	return nil
}

func (s *service) CreateLabTest(ctx context.Context, t *LabTest) error {
	if t.TestName == "" {
		return fmt.Errorf("%w: test_name", ErrMissingField)
	}
	if err := s.checkReferences(ctx, t.PatientID, t.OrderedBy); err != nil {
		return err
	}

	t.ID = uuid.New().String()
	t.Status = StatusOrdered
	t.CreatedAt = time.Now()
	t.CompletedAt = nil

	return s.labs.Create(ctx, t)
}

func (s *service) GetLabTest(ctx context.Context, id string) (*LabTest, error) {
	return s.labs.GetByID(ctx, id)
}

func (s *service) ListLabTests(ctx context.Context, filter ListFilter) ([]*LabTest, error) {
	if filter.Status != "" && !ValidStatuses[filter.Status] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, filter.Status)
	}
	return s.labs.List(ctx, filter)
}

func (s *service) UpdateLabTest(ctx context.Context, id string, upd *LabTestUpdate) (*LabTest, error) {
	t, err := s.labs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Status != nil {
		if !ValidStatuses[*upd.Status] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *upd.Status)
		}
		t.Status = *upd.Status
	}
	if upd.TechnicianID != nil {
		t.TechnicianID = upd.TechnicianID
	}
	if upd.Results != nil {
		t.Results = upd.Results
	}
	applyCompletion(t.Status, &t.CompletedAt)

	if err := s.labs.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) CreateRadiologyExam(ctx context.Context, e *RadiologyExam) error {
	if e.ExamType == "" {
		return fmt.Errorf("%w: exam_type", ErrMissingField)
	}
	if err := s.checkReferences(ctx, e.PatientID, e.OrderedBy); err != nil {
		return err
	}

	e.ID = uuid.New().String()
	e.Status = StatusOrdered
	e.CreatedAt = time.Now()
	e.CompletedAt = nil

	return s.exams.Create(ctx, e)
}

func (s *service) GetRadiologyExam(ctx context.Context, id string) (*RadiologyExam, error) {
	return s.exams.GetByID(ctx, id)
}

func (s *service) ListRadiologyExams(ctx context.Context, filter ListFilter) ([]*RadiologyExam, error) {
	if filter.Status != "" && !ValidStatuses[filter.Status] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, filter.Status)
	}
	return s.exams.List(ctx, filter)
}

func (s *service) UpdateRadiologyExam(ctx context.Context, id string, upd *RadiologyExamUpdate) (*RadiologyExam, error) {
	e, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Status != nil {
		if !ValidStatuses[*upd.Status] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *upd.Status)
		}
		e.Status = *upd.Status
	}
	if upd.RadiologistID != nil {
		e.RadiologistID = upd.RadiologistID
	}
	if upd.Findings != nil {
		e.Findings = upd.Findings
	}
	if upd.Impression != nil {
		e.Impression = upd.Impression
	}
	if upd.Recommendations != nil {
		e.Recommendations = upd.Recommendations
	}
	applyCompletion(e.Status, &e.CompletedAt)

	if err := s.exams.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// applyCompletion keeps completed_at in lockstep with the status: set when
// completed, cleared otherwise.
func applyCompletion(status string, completedAt **time.Time) {
	if status == StatusCompleted {
		if *completedAt == nil {
			now := time.Now()
			*completedAt = &now
		}
		return
	}
	*completedAt = nil
}
