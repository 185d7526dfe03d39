package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type statsRepoPG struct {
	db *pgxpool.Pool
}

func NewStatsRepoPG(db *pgxpool.Pool) StatsRepository {
	return &statsRepoPG{db: db}
}

func (r *statsRepoPG) DashboardStats(ctx context.Context, day time.Time) (*DashboardStats, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var s DashboardStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM queue_entries WHERE queue_date = $1::date),
			(SELECT COUNT(*) FROM lab_tests WHERE status = 'ordered'),
			(SELECT COUNT(*) FROM radiology_exams WHERE status = 'ordered'),
			(SELECT COUNT(*) FROM medications WHERE stock_quantity <= min_stock_level),
			(SELECT COUNT(*) FROM invoices WHERE payment_status = 'pending'),
			(SELECT COALESCE(SUM(final_amount_cents), 0) FROM invoices
				WHERE payment_status = 'paid' AND payment_date >= $2 AND payment_date < $3)`,
		dayStart, dayStart, dayEnd).
		Scan(&s.TotalPatients, &s.TodayQueueCount, &s.OrderedLabTests, &s.OrderedRadiologyExams,
			&s.LowStockMedications, &s.PendingInvoices, &s.TodayRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	return &s, nil
}

func (r *statsRepoPG) FinancialSummary(ctx context.Context, start, end time.Time) (*FinancialSummary, error) {
	var s FinancialSummary
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE payment_status = 'paid'),
			COALESCE(SUM(total_amount_cents), 0),
			COALESCE(SUM(final_amount_cents) FILTER (WHERE payment_status = 'paid'), 0)
		FROM invoices
		WHERE created_at >= $1 AND created_at < $2`,
		start, end).
		Scan(&s.InvoiceCount, &s.PaidCount, &s.TotalBilled, &s.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to compute financial summary: %w", err)
	}
	return &s, nil
}

func (r *statsRepoPG) PatientSummary(ctx context.Context, start, end time.Time) (*PatientSummary, error) {
	var s PatientSummary
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM queue_entries WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM medical_records WHERE visit_date >= $1 AND visit_date < $2),
			(SELECT COUNT(*) FROM lab_tests WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM radiology_exams WHERE created_at >= $1 AND created_at < $2)`,
		start, end).
		Scan(&s.NewPatients, &s.QueueEntries, &s.MedicalRecords, &s.LabTests, &s.RadiologyExams)
	if err != nil {
		return nil, fmt.Errorf("failed to compute patient summary: %w", err)
	}
	return &s, nil
}
