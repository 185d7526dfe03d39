package report

import (
	"time"

	"github.com/mesikahq/clinic-core/internal/money"
)

const (
	TypeFinancial = "financial"
	TypePatient   = "patient"
)

var ValidTypes = map[string]bool{
	TypeFinancial: true,
	TypePatient:   true,
}

// DashboardStats is the operational snapshot shown on the landing page.
// Every field is recomputed per call.
type DashboardStats struct {
	TotalPatients         int64       `json:"total_patients"`
	TodayQueueCount       int64       `json:"today_queue_count"`
	OrderedLabTests       int64       `json:"ordered_lab_tests"`
	OrderedRadiologyExams int64       `json:"ordered_radiology_exams"`
	LowStockMedications   int64       `json:"low_stock_medications"`
	PendingInvoices       int64       `json:"pending_invoices"`
	TodayRevenue          money.Cents `json:"today_revenue"`
}

// FinancialSummary aggregates invoicing over a period.
type FinancialSummary struct {
	InvoiceCount int64       `json:"invoice_count"`
	PaidCount    int64       `json:"paid_count"`
	TotalBilled  money.Cents `json:"total_billed"`
	TotalRevenue money.Cents `json:"total_revenue"`
}

// PatientSummary aggregates clinical activity over a period.
type PatientSummary struct {
	NewPatients    int64 `json:"new_patients"`
	QueueEntries   int64 `json:"queue_entries"`
	MedicalRecords int64 `json:"medical_records"`
	LabTests       int64 `json:"lab_tests"`
	RadiologyExams int64 `json:"radiology_exams"`
}

// Report is a generated document; a copy is archived in MongoDB.
type Report struct {
	ID          string      `json:"id" bson:"_id"`
	Type        string      `json:"type" bson:"type"`
	Format      string      `json:"format" bson:"format"`
	PeriodStart time.Time   `json:"period_start" bson:"period_start"`
	PeriodEnd   time.Time   `json:"period_end" bson:"period_end"`
	GeneratedBy string      `json:"generated_by" bson:"generated_by"`
	GeneratedAt time.Time   `json:"generated_at" bson:"generated_at"`
	Data        interface{} `json:"data" bson:"data"`
}
