package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mesikahq/clinic-core/internal/money"
)

type mockStatsRepo struct {
	dashboard *DashboardStats
	financial *FinancialSummary
	patients  *PatientSummary
	gotDay    time.Time
	gotStart  time.Time
	gotEnd    time.Time
}

func (m *mockStatsRepo) DashboardStats(_ context.Context, day time.Time) (*DashboardStats, error) {
	m.gotDay = day
	return m.dashboard, nil
}

func (m *mockStatsRepo) FinancialSummary(_ context.Context, start, end time.Time) (*FinancialSummary, error) {
	m.gotStart, m.gotEnd = start, end
	return m.financial, nil
}

func (m *mockStatsRepo) PatientSummary(_ context.Context, start, end time.Time) (*PatientSummary, error) {
	m.gotStart, m.gotEnd = start, end
	return m.patients, nil
}

type mockArchive struct {
	saved   []*Report
	saveErr error
}

func (m *mockArchive) Save(_ context.Context, r *Report) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *mockArchive) List(_ context.Context, reportType string, limit int64) ([]*Report, error) {
	var out []*Report
	for _, r := range m.saved {
		if reportType != "" && r.Type != reportType {
			continue
		}
		out = append(out, r)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func TestDashboardStats(t *testing.T) {
	stats := &mockStatsRepo{dashboard: &DashboardStats{
		TotalPatients:   42,
		TodayQueueCount: 7,
		TodayRevenue:    money.MustParse("312.50"),
	}}
	svc := NewService(stats, &mockArchive{})

	got, err := svc.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if got.TotalPatients != 42 || got.TodayQueueCount != 7 {
		t.Fatalf("unexpected stats: %+v", got)
	}
	if stats.gotDay.IsZero() {
		t.Fatal("repository not asked for today's snapshot")
	}
}

func TestGenerateFinancialReport(t *testing.T) {
	stats := &mockStatsRepo{financial: &FinancialSummary{
		InvoiceCount: 10,
		PaidCount:    8,
		TotalBilled:  money.MustParse("1000.00"),
		TotalRevenue: money.MustParse("820.00"),
	}}
	archive := &mockArchive{}
	svc := NewService(stats, archive)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	r, err := svc.Generate(context.Background(), GenerateRequest{
		Type: TypeFinancial, Start: start, End: end, GeneratedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if r.ID == "" || r.GeneratedAt.IsZero() {
		t.Fatal("report identity not filled in")
	}
	if r.Format != "json" {
		t.Fatalf("format = %q, want json default", r.Format)
	}
	sum, ok := r.Data.(*FinancialSummary)
	if !ok {
		t.Fatalf("data type %T, want *FinancialSummary", r.Data)
	}
	if sum.TotalRevenue != money.MustParse("820.00") {
		t.Fatalf("revenue = %s", sum.TotalRevenue)
	}
	if len(archive.saved) != 1 || archive.saved[0].ID != r.ID {
		t.Fatal("report not archived")
	}
	if !stats.gotStart.Equal(start) || !stats.gotEnd.Equal(end) {
		t.Fatal("period not forwarded to repository")
	}
}

func TestGeneratePatientReport(t *testing.T) {
	stats := &mockStatsRepo{patients: &PatientSummary{NewPatients: 5, QueueEntries: 30}}
	svc := NewService(stats, &mockArchive{})

	r, err := svc.Generate(context.Background(), GenerateRequest{
		Type:  TypePatient,
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, ok := r.Data.(*PatientSummary); !ok {
		t.Fatalf("data type %T, want *PatientSummary", r.Data)
	}
}

func TestGenerateValidation(t *testing.T) {
	svc := NewService(&mockStatsRepo{}, &mockArchive{})
	ctx := context.Background()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Generate(ctx, GenerateRequest{Type: "inventory", Start: start, End: start})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}

	_, err = svc.Generate(ctx, GenerateRequest{Type: TypeFinancial})
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}

	_, err = svc.Generate(ctx, GenerateRequest{Type: TypeFinancial, Start: start, End: start.AddDate(0, 0, -1)})
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
}

func TestGenerateArchiveFailure(t *testing.T) {
	boom := errors.New("mongo down")
	svc := NewService(
		&mockStatsRepo{financial: &FinancialSummary{}},
		&mockArchive{saveErr: boom},
	)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Generate(context.Background(), GenerateRequest{Type: TypeFinancial, Start: start, End: start})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want archive error", err)
	}
}

func TestListArchived(t *testing.T) {
	stats := &mockStatsRepo{financial: &FinancialSummary{}, patients: &PatientSummary{}}
	archive := &mockArchive{}
	svc := NewService(stats, archive)
	ctx := context.Background()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for _, typ := range []string{TypeFinancial, TypePatient, TypeFinancial} {
		if _, err := svc.Generate(ctx, GenerateRequest{Type: typ, Start: start, End: start}); err != nil {
			t.Fatalf("Generate(%s): %v", typ, err)
		}
	}

	out, err := svc.ListArchived(ctx, TypeFinancial, 0)
	if err != nil || len(out) != 2 {
		t.Fatalf("ListArchived: %d reports, err %v", len(out), err)
	}

	if _, err := svc.ListArchived(ctx, "bogus", 0); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}
}
