package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesikahq/clinic-core/internal/patient"
	"github.com/mesikahq/clinic-core/internal/sequence"
)

var (
	ErrEntryNotFound = errors.New("queue entry not found")
	ErrInvalidStatus = errors.New("invalid queue status")
)

// PatientDirectory is the slice of the patient service the queue needs.
type PatientDirectory interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

type Service interface {
	Create(ctx context.Context, patientID string, queueDate time.Time, priority int, notes *string) (*Entry, error)
	ListByDate(ctx context.Context, date time.Time) ([]*Entry, error)
	UpdateStatus(ctx context.Context, id, status string) (*Entry, error)
}

type service struct {
	repo     Repository
	patients PatientDirectory
	seq      sequence.Generator
}

func NewService(repo Repository, patients PatientDirectory, seq sequence.Generator) Service {
	return &service{repo: repo, patients: patients, seq: seq}
}

// normalizeDate truncates to the calendar day; queue numbering is scoped
// per day.
func normalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *service) Create(ctx context.Context, patientID string, queueDate time.Time, priority int, notes *string) (*Entry, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, fmt.Errorf("%w: %s", patient.ErrPatientNotFound, patientID)
		}
		return nil, err
	}

	date := normalizeDate(queueDate)
	n, err := s.seq.Next(ctx, sequence.NameQueueNumber, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &Entry{
		ID:          uuid.New().String(),
		PatientID:   patientID,
		QueueNumber: int(n),
		QueueDate:   date,
		Status:      StatusWaiting,
		Priority:    priority,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ListByDate(ctx context.Context, date time.Time) ([]*Entry, error) {
	return s.repo.ListByDate(ctx, normalizeDate(date))
}

// UpdateStatus writes the new status without checking a transition graph;
// any status may replace any other.
func (s *service) UpdateStatus(ctx context.Context, id, status string) (*Entry, error) {
	if !ValidStatuses[status] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
