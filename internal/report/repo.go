package report

import (
	"context"
	"time"
)

// StatsRepository answers the read-only aggregate queries behind the
// dashboard and generated reports.
type StatsRepository interface {
	// DashboardStats computes the snapshot for the given day (queue
	// count and revenue are scoped to it).
	DashboardStats(ctx context.Context, day time.Time) (*DashboardStats, error)
	FinancialSummary(ctx context.Context, start, end time.Time) (*FinancialSummary, error)
	PatientSummary(ctx context.Context, start, end time.Time) (*PatientSummary, error)
}

// Archive persists generated reports for later retrieval.
type Archive interface {
	Save(ctx context.Context, r *Report) error
	List(ctx context.Context, reportType string, limit int64) ([]*Report, error)
}
