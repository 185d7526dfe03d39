package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidType   = errors.New("invalid report type")
	ErrInvalidPeriod = errors.New("invalid report period")
)

// GenerateRequest describes the report to produce.
type GenerateRequest struct {
	Type        string    `json:"type"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Format      string    `json:"format"`
	GeneratedBy string    `json:"-"`
}

type Service interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	Generate(ctx context.Context, req GenerateRequest) (*Report, error)
	ListArchived(ctx context.Context, reportType string, limit int64) ([]*Report, error)
}

type service struct {
	stats   StatsRepository
	archive Archive
	now     func() time.Time
}

func NewService(stats StatsRepository, archive Archive) Service {
	return &service{stats: stats, archive: archive, now: time.Now}
}

func (s *service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	return s.stats.DashboardStats(ctx, s.now())
}

func (s *service) Generate(ctx context.Context, req GenerateRequest) (*Report, error) {
	if !ValidTypes[req.Type] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, req.Type)
	}
	if req.Start.IsZero() || req.End.IsZero() || req.End.Before(req.Start) {
		return nil, ErrInvalidPeriod
	}
	if req.Format == "" {
		req.Format = "json"
	}

	var data interface{}
	var err error
	switch req.Type {
	case TypeFinancial:
		data, err = s.stats.FinancialSummary(ctx, req.Start, req.End)
	case TypePatient:
		data, err = s.stats.PatientSummary(ctx, req.Start, req.End)
	}
	if err != nil {
		return nil, err
	}

	r := &Report{
		ID:          uuid.New().String(),
		Type:        req.Type,
		Format:      req.Format,
		PeriodStart: req.Start,
		PeriodEnd:   req.End,
		GeneratedBy: req.GeneratedBy,
		GeneratedAt: s.now(),
		Data:        data,
	}
	if err := s.archive.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) ListArchived(ctx context.Context, reportType string, limit int64) ([]*Report, error) {
	if reportType != "" && !ValidTypes[reportType] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, reportType)
	}
	return s.archive.List(ctx, reportType, limit)
}
